package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/tzaware/internal/config"
	"github.com/and161185/tzaware/internal/service"
	"github.com/and161185/tzaware/tzaware"
)

type loggerFunc func(level string) (*zap.Logger, error)

// app carries what every subcommand needs once the root pre-run has resolved config.
type app struct {
	out       io.Writer
	newLogger loggerFunc
	now       func() time.Time

	cfgPath string
	flags   config.Config

	cfg    config.Config
	policy tzaware.Policy
	log    *zap.Logger
	store  *store
	svc    service.EntryService
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}

// newRootCmd builds the command tree. Output goes to out; nl builds the logger once
// the log level is known.
func newRootCmd(out io.Writer, nl loggerFunc) *cobra.Command {
	return newApp(out, nl).command()
}

func newApp(out io.Writer, nl loggerFunc) *app {
	return &app{out: out, newLogger: nl, now: time.Now}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "tzdemo",
		Short:         "Store timezone-aware timestamps in timezone-naive storage",
		Version:       version + " (" + buildDate + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	def := config.Default()
	pf.StringVar(&a.cfgPath, "config", "", "TOML config file")
	pf.StringVar(&a.flags.Driver, "driver", def.Driver, "storage driver: postgres|sqlite|redis")
	pf.StringVar(&a.flags.DSN, "dsn", def.DSN, "postgres or sqlite DSN")
	pf.StringVar(&a.flags.Redis.Addr, "redis-addr", def.Redis.Addr, "redis address")
	pf.StringVar(&a.flags.Naive, "naive", def.Naive, "timestamps without offset: reject|assume-utc")
	pf.StringVar(&a.flags.Incomplete, "incomplete", def.Incomplete, "stored offset or zone without instant: reject|allow")
	pf.StringVar(&a.flags.LogLevel, "log-level", def.LogLevel, "log level")
	pf.StringVar(&a.flags.Output, "output", def.Output, "output format: json|yaml|protojson")

	root.AddCommand(
		newMigrateCmd(a),
		newAddCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newCountCmd(a),
		newDeleteCmd(a),
		newDemoCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = a.applyFlags(cmd, cfg)
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if a.policy, err = a.cfg.Policy(); err != nil {
		return err
	}
	if a.log, err = a.newLogger(a.cfg.LogLevel); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log.Debug("config",
		zap.String("driver", a.cfg.Driver),
		zap.Stringer("policy", a.policy),
		zap.String("version", version),
	)
	return nil
}

// applyFlags overlays flags that were set explicitly on cfg.
func (a *app) applyFlags(cmd *cobra.Command, cfg config.Config) config.Config {
	fs := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("driver", &cfg.Driver, a.flags.Driver)
	set("dsn", &cfg.DSN, a.flags.DSN)
	set("redis-addr", &cfg.Redis.Addr, a.flags.Redis.Addr)
	set("naive", &cfg.Naive, a.flags.Naive)
	set("incomplete", &cfg.Incomplete, a.flags.Incomplete)
	set("log-level", &cfg.LogLevel, a.flags.LogLevel)
	set("output", &cfg.Output, a.flags.Output)
	return cfg
}

// run adapts fn to cobra: it opens the configured store for fn and releases it after.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.teardown()
		var err error
		if a.store, err = openStore(cmd.Context(), a.cfg, a.policy); err != nil {
			return fmt.Errorf("open %s: %w", a.cfg.Driver, err)
		}
		a.svc = service.WithLogging(service.NewEntryService(a.store.repo, a.policy), a.log)
		return fn(cmd, args)
	}
}

func (a *app) printer() printer { return printer{w: a.out, format: a.cfg.Output} }

func (a *app) teardown() {
	if a.store != nil {
		a.store.close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
