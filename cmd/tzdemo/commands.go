package main

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if err := a.store.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.log.Info("migrated", zap.String("driver", a.cfg.Driver))
			return a.printer().print(map[string]string{"migrated": a.cfg.Driver})
		}),
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		info     string
		at       string
		expected int32
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store an entry; --at takes RFC 3339 text, empty stores a null instant",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			var exp *int32
			if cmd.Flags().Changed("expected-offset") {
				exp = &expected
			}
			e, err := a.svc.RecordText(cmd.Context(), info, at, exp)
			if err != nil {
				return err
			}
			return a.printer().print(viewOf(*e))
		}),
	}
	cmd.Flags().StringVar(&info, "info", "", "entry text (required)")
	cmd.Flags().StringVar(&at, "at", "", "timestamp such as 2010-01-15T08:00:00-08:00")
	cmd.Flags().Int32Var(&expected, "expected-offset", 0, "offset in seconds east of UTC the timestamp should carry")
	_ = cmd.MarkFlagRequired("info")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("bad id %q: %w", args[0], err)
			}
			e, err := a.svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printer().print(viewOf(*e))
		}),
	}
}

func newListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries by instant, null instants first",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			es, err := a.svc.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.printer().print(viewsOf(es))
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries, 0 for all")
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count entries",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			n, err := a.svc.Count(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer().print(map[string]int64{"count": n})
		}),
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("bad id %q: %w", args[0], err)
			}
			if err := a.svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return a.printer().print(map[string]string{"deleted": id.String()})
		}),
	}
}

// demoReport is what the demo prints.
type demoReport struct {
	Count   int64       `json:"count" yaml:"count"`
	Entries []entryView `json:"entries" yaml:"entries"`
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Migrate, store four sample entries and list everything",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.store.migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			la, err := time.LoadLocation("America/Los_Angeles")
			if err != nil {
				return err
			}
			nz, err := time.LoadLocation("Pacific/Auckland")
			if err != nil {
				return err
			}
			now := a.now()
			zero, pst := int32(0), int32(-8*3600)

			samples := []struct {
				info     string
				at       time.Time
				expected *int32
			}{
				{"first date", now.UTC(), &zero},
				{"null date", time.Time{}, nil},
				{"PST date", now.In(la), &pst},
				{"New Zealand date", now.In(nz), nil},
			}
			for _, s := range samples {
				if _, err := a.svc.Record(ctx, s.info, s.at, s.expected); err != nil {
					return fmt.Errorf("record %q: %w", s.info, err)
				}
			}

			n, err := a.svc.Count(ctx)
			if err != nil {
				return err
			}
			es, err := a.svc.List(ctx, 0)
			if err != nil {
				return err
			}
			return a.printer().print(demoReport{Count: n, Entries: viewsOf(es)})
		}),
	}
}
