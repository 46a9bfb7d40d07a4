package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"sbmn-interviewer/internal/storage"
)

// DailyStats aggregates the export attempts of one day.
type DailyStats struct {
	Date              string         `json:"date"`
	Attempts          int            `json:"attempts"`
	Exported          int            `json:"exported"`
	Failed            int            `json:"failed"`
	UniqueSessions    int            `json:"unique_sessions"`
	AvgMessages       float64        `json:"avg_messages"`
	FailuresBySession map[string]int `json:"failures_by_session,omitempty"`
}

// AnalyzeDay aggregates entries whose timestamp falls on day, in day's location.
func AnalyzeDay(entries []storage.Entry, day time.Time) *DailyStats {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:              start.Format("2006-01-02"),
		FailuresBySession: make(map[string]int),
	}
	sessions := make(map[string]bool)
	totalMessages := 0

	for _, e := range entries {
		if e.Timestamp.Before(start) || !e.Timestamp.Before(end) {
			continue
		}
		stats.Attempts++
		sessions[e.Session] = true
		switch e.Status {
		case storage.StatusExported:
			stats.Exported++
			totalMessages += e.Messages
		case storage.StatusExportFailed:
			stats.Failed++
			stats.FailuresBySession[e.Session]++
		}
	}

	stats.UniqueSessions = len(sessions)
	if stats.Exported > 0 {
		stats.AvgMessages = float64(totalMessages) / float64(stats.Exported)
	}
	return stats
}

// Summary renders a short human-readable report.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Relatório de entrevistas SBMN em %s\n\n", ds.Date)
	fmt.Fprintf(&b, "- Entrevistas concluídas: %d\n", ds.Attempts)
	fmt.Fprintf(&b, "- Salvas na planilha: %d\n", ds.Exported)
	fmt.Fprintf(&b, "- Falhas ao salvar: %d\n", ds.Failed)
	fmt.Fprintf(&b, "- Sessões distintas: %d\n", ds.UniqueSessions)
	if ds.Exported > 0 {
		fmt.Fprintf(&b, "- Média de mensagens por entrevista: %.1f\n", ds.AvgMessages)
	}
	if len(ds.FailuresBySession) > 0 {
		keys := make([]string, 0, len(ds.FailuresBySession))
		for k := range ds.FailuresBySession {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\nFalhas por sessão:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.FailuresBySession[k])
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
