package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// Entry - строка таблицы результатов.
type Entry struct {
	Rank    int
	Attempt quiz.CompletionReport
}

// Leaderboard сортирует попытки по баллу, при равенстве выше та, что завершена раньше.
func Leaderboard(attempts []quiz.CompletionReport) []Entry {
	sorted := make([]quiz.CompletionReport, len(attempts))
	copy(sorted, attempts)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}

		return sorted[i].FinishedAt.Before(sorted[j].FinishedAt)
	})

	entries := make([]Entry, len(sorted))
	for i, a := range sorted {
		entries[i] = Entry{Rank: i + 1, Attempt: a}
	}

	return entries
}

// ExportAttemptsCSV экспортирует попытки квиза в CSV.
func ExportAttemptsCSV(attempts []quiz.CompletionReport) ([]byte, error) {
	entries := Leaderboard(attempts)

	rows := make([][]string, len(entries)+1)
	rows[0] = []string{
		"Rank",
		"LearnerID",
		"Attempt",
		"Score",
		"Passed",
		"AutoSubmitted",
		"FinishedAt",
	}
	for i, e := range entries {
		rows[i+1] = []string{
			fmt.Sprintf("%d", e.Rank),
			e.Attempt.LearnerID,
			fmt.Sprintf("%d", e.Attempt.Number),
			fmt.Sprintf("%d", e.Attempt.Score),
			fmt.Sprintf("%t", e.Attempt.Passed),
			fmt.Sprintf("%t", e.Attempt.AutoSubmitted),
			e.Attempt.FinishedAt.UTC().Format(time.RFC3339),
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.WriteAll(rows)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
