package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Freeeeeet/intake_bot/internal/app"
	"github.com/Freeeeeet/intake_bot/internal/config"
	"github.com/Freeeeeet/intake_bot/internal/conversation"
	"github.com/Freeeeeet/intake_bot/internal/service"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slots",
		Short:        "Operator tool for the booking table",
		SilenceUsage: true,
	}

	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newBookingsCmd())

	return root
}

// withLedger открывает таблицу по конфигурации и передаёт готовый ledger в fn
func withLedger(ctx context.Context, fn func(*service.Ledger, *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	infra, err := app.NewInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	ledger := service.NewLedger(infra.Table, logger)
	if err := ledger.Init(ctx, cfg.Flavor()); err != nil {
		return err
	}
	return fn(ledger, cfg)
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the booking table with headers (and seed slots for the slots flow)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), func(_ *service.Ledger, cfg *config.Config) error {
				fmt.Fprintf(cmd.OutOrStdout(), "table ready (driver=%s, flow=%s)\n", cfg.StoreDriver, cfg.Flavor())
				return nil
			})
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add DATE TIME...",
		Short: "Add open slots for a date, e.g. add 20.12.2024 10:00 12:00",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := conversation.ValidateDate(args[0], time.Now())
			if err != nil {
				return err
			}
			times := make([]string, 0, len(args)-1)
			for _, a := range args[1:] {
				t, err := conversation.ValidateTime(a)
				if err != nil {
					return fmt.Errorf("%s: %w", a, err)
				}
				times = append(times, t)
			}

			return withLedger(cmd.Context(), func(l *service.Ledger, _ *config.Config) error {
				added, err := l.AddSlots(cmd.Context(), date, times)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d of %d slots for %s\n", added, len(times), date)
				return nil
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open slots grouped by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), func(l *service.Ledger, _ *config.Config) error {
				days := l.ListOpenSlotsGrouped(cmd.Context())
				if len(days) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no open slots")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, d := range days {
					fmt.Fprintf(w, "%s\t%v\n", d.Date, d.Times)
				}
				return w.Flush()
			})
		},
	}
}

func newBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings USER_ID",
		Short: "List every row written for a Telegram user id",
		Args: cobra.MatchAll(cobra.ExactArgs(1), func(_ *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("USER_ID must not be empty")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd.Context(), func(l *service.Ledger, _ *config.Config) error {
				records, err := l.ListByUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ROW\tDATE\tTIME\tNAME\tPHONE\tSTATUS")
				for _, r := range records {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Row, r.Date, r.Time, r.DisplayName, r.Phone, r.Status)
				}
				return w.Flush()
			})
		},
	}
}
