package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"layerguard/internal/data/history"
	"layerguard/internal/ui/report"
)

type historyEntry struct {
	ID             string         `json:"id"`
	CommitHash     string         `json:"commitHash,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	FilesAnalyzed  int            `json:"filesAnalyzed"`
	ViolationCount int            `json:"violationCount"`
	Passed         bool           `json:"passed"`
	DurationMs     int64          `json:"durationMs"`
	RuleCounts     map[string]int `json:"ruleCounts"`
}

func newHistoryCmd(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded check runs, newest first",
		Long:  "List the runs saved by `check --record`, newest first.",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			if limit < 1 {
				return usageError(fmt.Errorf("--limit must be >= 1, got %d", limit))
			}
			format, err := report.ParseFormat(s.settings.Format)
			if err != nil {
				return usageError(err)
			}

			svc, cleanup, err := s.service(root, true)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := svc.History(cmd.Context(), root, limit)
			if err != nil {
				return err
			}
			if format == report.FormatJSON {
				return writeHistoryJSON(cmd.OutOrStdout(), runs)
			}
			return writeHistoryText(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")
	cmd.Flags().String("format", "text", "Output format: text or json")
	return cmd
}

func writeHistoryJSON(w io.Writer, runs []history.RunRecord) error {
	entries := make([]historyEntry, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, historyEntry{
			ID:             run.ID,
			CommitHash:     run.CommitHash,
			Timestamp:      run.Timestamp,
			FilesAnalyzed:  run.FilesAnalyzed,
			ViolationCount: run.ViolationCount,
			Passed:         run.Passed,
			DurationMs:     run.Duration.Milliseconds(),
			RuleCounts:     run.RuleCounts,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeHistoryText(w io.Writer, runs []history.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded runs.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCOMMIT\tRESULT\tVIOLATIONS\tFILES\tDURATION")
	for _, run := range runs {
		result := "passed"
		if !run.Passed {
			result = "failed"
		}
		commit := run.CommitHash
		if len(commit) > 8 {
			commit = commit[:8]
		}
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.Timestamp.Local().Format(time.DateTime),
			commit,
			result,
			run.ViolationCount,
			run.FilesAnalyzed,
			run.Duration.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}
