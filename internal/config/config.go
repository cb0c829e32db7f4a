package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config - настройки сервиса квизов.
type Config struct {
	HTTPAddr        string
	DatabaseDSN     string
	AMQPURL         string
	AMQPExchange    string
	LogLevel        slog.Level
	QuizDir         string
	ShutdownTimeout time.Duration
}

// ключ конфигурации -> флаг командной строки
var flagKeys = map[string]string{
	"HTTP_ADDR":        "http-addr",
	"DATABASE_DSN":     "database-dsn",
	"AMQP_URL":         "amqp-url",
	"AMQP_EXCHANGE":    "amqp-exchange",
	"LOG_LEVEL":        "log-level",
	"QUIZ_DIR":         "quiz-dir",
	"SHUTDOWN_TIMEOUT": "shutdown-timeout",
}

// Load читает настройки: флаги, затем переменные окружения, затем файл .env.
// Путь к файлу можно задать флагом --config.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("quizserver", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to env config file")
	fs.String("http-addr", ":8080", "address of the HTTP server")
	fs.String("database-dsn", "", "postgres DSN, in-memory storage is used if empty")
	fs.String("amqp-url", "", "RabbitMQ URL, events are not published if empty")
	fs.String("amqp-exchange", "quiz.events", "RabbitMQ exchange for quiz events")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("quiz-dir", "", "directory with quiz JSON files loaded at startup")
	fs.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetConfigType("env")
	if *configPath != "" {
		v.SetConfigFile(*configPath)
	} else {
		v.SetConfigName(".env")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if *configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}

		slog.Debug("config file is not found, using env and flags")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		AMQPURL:         v.GetString("AMQP_URL"),
		AMQPExchange:    v.GetString("AMQP_EXCHANGE"),
		LogLevel:        level,
		QuizDir:         v.GetString("QUIZ_DIR"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("http address is required")
	}

	return cfg, nil
}
