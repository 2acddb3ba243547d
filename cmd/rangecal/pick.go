package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rangecal/internal/blackout"
	"rangecal/internal/calendar"
	appLog "rangecal/internal/log"
	"rangecal/internal/tui"
)

var errPickCancelled = errors.New("pick cancelled")

func addPick(topLevel *cobra.Command, flags *rootFlags) {
	var (
		mode      string
		panes     string
		withFeeds bool
	)
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a date or range in the terminal and print it.",
		Long: `Runs the calendar in the terminal. The selection is printed on exit
with q: a date in single mode, start:end in range mode. ctrl+c exits
with an error and prints nothing.`,
		Example: `
rangecal pick --mode range
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(flags)
			if err != nil {
				return err
			}
			opts, err := conf.Options()
			if err != nil {
				appLog.Warn("calendar options degraded to defaults", "error", err.Error())
			}
			if mode != "" {
				if opts.Mode, err = calendar.ParseMode(mode); err != nil {
					return err
				}
			}
			if panes != "" {
				if opts.RangeCalendarCount, err = calendar.ParsePaneCount(panes); err != nil {
					return err
				}
			}
			if withFeeds {
				loader, _ := blackout.NewLoader(conf, opts.Location)
				snap, err := loader.Load(cmd.Context())
				if err != nil {
					appLog.Warn("blackout load incomplete", "error", err.Error())
				}
				opts.Constraints.Excluded = opts.Constraints.Excluded.Merge(snap.Dates)
			}
			return runPick(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "single or range (overrides config)")
	cmd.Flags().StringVar(&panes, "panes", "", "1, 2 or auto (overrides config)")
	cmd.Flags().BoolVar(&withFeeds, "blackout", false, "Also load RRULE and ICS blackout sources")
	topLevel.AddCommand(cmd)
}

func runPick(ctx context.Context, opts calendar.Options, out io.Writer) error {
	// Log lines would tear the alternate screen.
	appLog.SetOutput(io.Discard)
	defer appLog.SetOutput(os.Stderr)

	p := tea.NewProgram(tui.New(calendar.New(opts)), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	m, ok := final.(tui.Model)
	if !ok || !m.Accepted() {
		return errPickCancelled
	}
	if r := m.Result(); r != "" {
		fmt.Fprintln(out, r)
	}
	return nil
}
