package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/macbridge/internal/calendar"
	"github.com/teemow/macbridge/internal/config"
	"github.com/teemow/macbridge/internal/server"
)

// sourceFlags selects the event source of a calendar command. Empty values
// fall back to the config file.
type sourceFlags struct {
	source   string
	calendar string
	account  string
	events   string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Event source: apple, google or file (default from config)")
	cmd.Flags().StringVar(&f.calendar, "calendar", "", "Only read the first calendar whose name contains this text")
	cmd.Flags().StringVar(&f.account, "account", "", "Google account name for the google source")
	cmd.Flags().StringVar(&f.events, "events", "", "JSON events file for the file source, '-' for stdin")
}

// spec returns the source selection. An events file without an explicit
// source implies the file source.
func (f *sourceFlags) spec() server.SourceSpec {
	spec := server.SourceSpec{
		Source:     f.source,
		Calendar:   f.calendar,
		Account:    f.account,
		EventsFile: f.events,
	}
	if spec.Source == "" && spec.EventsFile != "" {
		spec.Source = config.SourceFile
	}
	return spec
}

func newSlotsCmd() *cobra.Command {
	var (
		sources    sourceFlags
		duration   int
		start      string
		end        string
		timezone   string
		skipAllDay bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "slots DATE",
		Short: "Find free time slots on a date",
		Long: `Find the free periods of at least --duration minutes within the workday of
DATE (YYYY-MM-DD). Events are read from Calendar.app, Google Calendar or a JSON
file. Finding no slot is not an error.`,
		Example: `  macbridge slots 2026-10-16
  macbridge slots 2026-10-16 --duration 30 --calendar Work
  macbridge slots 2026-10-16 --events events.json --start 08:00 --end 12:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newCLIContext(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()
			cfg := sc.Config()

			loc := sc.Location()
			if timezone != "" {
				if loc, err = time.LoadLocation(timezone); err != nil {
					return fmt.Errorf("unknown timezone %q: %w", timezone, err)
				}
			}

			date, err := calendar.ParseDate(args[0], loc)
			if err != nil {
				return err
			}

			q := calendar.SlotQuery{
				Date:        date,
				Location:    loc,
				MinDuration: cfg.Slots.MinDuration,
				SkipAllDay:  cfg.Slots.SkipAllDay,
			}
			if cmd.Flags().Changed("duration") {
				q.MinDuration = duration
			}
			if cmd.Flags().Changed("skip-all-day") {
				q.SkipAllDay = skipAllDay
			}
			if q.Start, q.End, err = cfg.WorkdayClocks(); err != nil {
				return err
			}
			if start != "" {
				if q.Start, err = calendar.ParseClock(start); err != nil {
					return err
				}
			}
			if end != "" {
				if q.End, err = calendar.ParseClock(end); err != nil {
					return err
				}
			}

			report, err := sc.FindFreeSlots(cmd.Context(), sources.spec(), q)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return calendar.WriteSlots(cmd.OutOrStdout(), termStyler{}, report)
		},
	}

	sources.register(cmd)
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "Minimum slot length in minutes (default from config, usually 60)")
	cmd.Flags().StringVar(&start, "start", "", "Workday start, HH:MM (default from config)")
	cmd.Flags().StringVar(&end, "end", "", "Workday end, HH:MM (default from config)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone of the workday (default from config)")
	cmd.Flags().BoolVar(&skipAllDay, "skip-all-day", false, "Ignore all-day events such as holidays")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")

	return cmd
}
