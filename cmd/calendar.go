package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/macbridge/internal/calendar"
)

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Calendar reports",
	}
	cmd.AddCommand(newUpcomingCmd())
	cmd.AddCommand(newSummaryCmd())
	return cmd
}

func newUpcomingCmd() *cobra.Command {
	var (
		sources sourceFlags
		days    int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the events of the next days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}

			sc, err := newCLIContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			src, err := sc.EventSource(cmd.Context(), sources.spec())
			if err != nil {
				return err
			}

			now := time.Now().In(sc.Location())
			events, err := src.Events(cmd.Context(), now, now.AddDate(0, 0, days))
			if err != nil {
				return fmt.Errorf("failed to read events: %w", err)
			}
			events = calendar.Upcoming(now, days, events)

			if jsonOut {
				if events == nil {
					events = []calendar.Event{}
				}
				return writeJSON(cmd.OutOrStdout(), events)
			}
			return calendar.WriteUpcoming(cmd.OutOrStdout(), termStyler{}, days, events)
		},
	}

	sources.register(cmd)
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to look ahead")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the events as JSON, readable by --events")

	return cmd
}

func newSummaryCmd() *cobra.Command {
	var (
		sources sourceFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "summary FROM TO",
		Short: "Summarize the events between two dates, both included",
		Example: `  macbridge calendar summary 2026-10-01 2026-10-31
  macbridge calendar summary 2026-10-12 2026-10-16 --calendar Work`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newCLIContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			from, err := calendar.ParseDate(args[0], sc.Location())
			if err != nil {
				return err
			}
			to, err := calendar.ParseDate(args[1], sc.Location())
			if err != nil {
				return err
			}
			window, err := calendar.DateRange(from, to)
			if err != nil {
				return err
			}

			src, err := sc.EventSource(cmd.Context(), sources.spec())
			if err != nil {
				return err
			}
			events, err := src.Events(cmd.Context(), window.Start, window.End)
			if err != nil {
				return fmt.Errorf("failed to read events: %w", err)
			}

			summary := calendar.Summarize(window.Start, window.End, events)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			return calendar.WriteSummary(cmd.OutOrStdout(), termStyler{}, summary)
		},
	}

	sources.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the summary as JSON")

	return cmd
}
