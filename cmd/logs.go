package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/slotgate/config"
	"github.com/kilianp07/slotgate/core/dispatch/logging"
	"github.com/kilianp07/slotgate/core/model"
)

type logsFlags struct {
	since      time.Duration
	start      string
	end        string
	dispatchID string
	operation  string
	model      string
	status     string
	limit      int
	output     string
}

var lflags logsFlags

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the dispatch log store",
	RunE:  runLogs,
}

func init() {
	f := logsCmd.Flags()
	f.DurationVar(&lflags.since, "since", 0, "only entries newer than this duration")
	f.StringVar(&lflags.start, "start", "", "RFC3339 lower bound")
	f.StringVar(&lflags.end, "end", "", "RFC3339 upper bound")
	f.StringVar(&lflags.dispatchID, "dispatch-id", "", "dispatch id")
	f.StringVar(&lflags.operation, "operation", "", "operation tag")
	f.StringVar(&lflags.model, "model", "", "model name")
	f.StringVar(&lflags.status, "status", "", "success or error")
	f.IntVar(&lflags.limit, "limit", 0, "maximum number of entries")
	f.StringVarP(&lflags.output, "output", "o", "json", "output format: json or yaml")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	q, err := lflags.query(time.Now())
	if err != nil {
		return err
	}
	store, err := logging.Open(cfg.Logging.Options())
	if err != nil {
		return fmt.Errorf("open log store: %w", err)
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return writeEntries(cmd.OutOrStdout(), lflags.output, entries)
}

func (f logsFlags) query(now time.Time) (logging.LogQuery, error) {
	q := logging.LogQuery{
		DispatchID: f.dispatchID,
		Operation:  f.operation,
		Model:      f.model,
		Limit:      f.limit,
	}
	if f.since > 0 {
		q.Start = now.Add(-f.since)
	}
	if f.start != "" {
		t, err := time.Parse(time.RFC3339, f.start)
		if err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
		q.Start = t
	}
	if f.end != "" {
		t, err := time.Parse(time.RFC3339, f.end)
		if err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
		q.End = t
	}
	if f.status != "" {
		st, err := model.ParseLogStatus(f.status)
		if err != nil {
			return q, err
		}
		q.Status = &st
	}
	if f.limit < 0 {
		return q, fmt.Errorf("limit must not be negative")
	}
	return q, nil
}

func writeEntries(w io.Writer, format string, entries []model.LogEntry) error {
	if entries == nil {
		entries = []model.LogEntry{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
