package slogcustom

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.With(slog.String("quiz_id", "lesson-1")).
		WithGroup("session").
		Info("submitted", slog.Int("score", 33), slog.Group("timer", slog.Bool("auto", true)))

	out := buf.String()
	assert.Contains(t, out, "INFO: submitted")
	assert.Contains(t, out, "quiz_id=lesson-1 session.score=33 session.timer.auto=true")
}

func TestCustomHandler_Levels(t *testing.T) {
	color.NoColor = true

	var level slog.LevelVar
	level.Set(slog.LevelWarn)

	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, &level))

	log.Info("skipped")
	log.Error("failed", slog.String("err", "boom"))

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "ERROR: failed err=boom")

	level.Set(slog.LevelDebug)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "DEBUG: visible")
}
