package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/studiowebux/kycfill/internal/analytics"
	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/history"
	"github.com/studiowebux/kycfill/internal/types"
	"gopkg.in/yaml.v3"
)

// ListHistory prints recorded exchanges, newest first
func ListHistory(w io.Writer, manager *history.Manager, source string, limit int, format string) error {
	var entries []types.HistoryEntry
	var err error
	if source != "" {
		entries, err = manager.ListForSource(source)
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
	} else {
		entries, err = manager.List(limit)
	}
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		body, err := marshalJSON(entries)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, body)
		return err
	case FormatYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No history entries")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tOPERATION\tSTATUS\tSOURCE\tDURATION\tSIZE\tERROR")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			entry.ID,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Operation,
			entry.Status,
			entry.Source,
			client.FormatDuration(entry.Duration),
			client.FormatSize(entry.ResponseSize),
			entry.Error,
		)
	}
	return tw.Flush()
}

// ClearHistory deletes every entry and reports how many were removed
func ClearHistory(w io.Writer, manager *history.Manager) error {
	count, err := manager.GetCount()
	if err != nil {
		return err
	}
	if err := manager.Clear(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Cleared %d history entries\n", count)
	return err
}

// HistoryStats prints aggregated call statistics, per operation or per source document
func HistoryStats(w io.Writer, manager *analytics.Manager, bySource bool, format string) error {
	var stats []analytics.Stats
	var err error
	if bySource {
		stats, err = manager.PerSource()
	} else {
		stats, err = manager.PerOperation()
	}
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		body, err := marshalJSON(stats)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, body)
		return err
	case FormatYAML:
		data, err := yaml.Marshal(stats)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "No history entries")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tSOURCE\tCALLS\tOK\tERRORS\tNETWORK\tSUCCESS\tAVG\tMIN\tMAX\tLAST")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.0f%%\t%s\t%s\t%s\t%s\n",
			s.Operation,
			s.Source,
			s.TotalCalls,
			s.SuccessCount,
			s.ErrorCount,
			s.NetworkErrors,
			s.SuccessRate(),
			client.FormatDuration(int64(s.AvgDurationMs)),
			client.FormatDuration(s.MinDurationMs),
			client.FormatDuration(s.MaxDurationMs),
			s.LastCalled.Format("2006-01-02 15:04:05"),
		)
	}
	return tw.Flush()
}
