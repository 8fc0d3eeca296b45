// Command flowti runs the business simulation headless: a wall-clock
// driver feeding elapsed real time into the tick scheduler, with
// SQLite snapshot persistence and an optional diagnostics API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Luis85/flowti-sub000/internal/api"
	"github.com/Luis85/flowti-sub000/internal/catalog"
	"github.com/Luis85/flowti-sub000/internal/engine"
	"github.com/Luis85/flowti-sub000/internal/event"
	"github.com/Luis85/flowti-sub000/internal/persistence"
	"github.com/Luis85/flowti-sub000/internal/settings"
)

type runOptions struct {
	dbPath       string
	settingsPath string
	catalogPath  string
	seed         uint32
	speed        float64
	intervalMs   int
	apiPort      int
	fresh        bool
}

func main() {
	opts := runOptions{}

	root := &cobra.Command{
		Use:   "flowti",
		Short: "Tick-driven business simulation engine",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	runCmd.Flags().StringVar(&opts.dbPath, "db", "data/flowti.db", "snapshot database path")
	runCmd.Flags().StringVar(&opts.settingsPath, "settings", "", "settings YAML (optional)")
	runCmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "catalog YAML (optional)")
	runCmd.Flags().Uint32Var(&opts.seed, "seed", 0, "world seed (0 = settings default)")
	runCmd.Flags().Float64Var(&opts.speed, "speed", 60, "simulated ms per real ms")
	runCmd.Flags().IntVar(&opts.intervalMs, "interval", 1000, "driver tick interval in real ms")
	runCmd.Flags().IntVar(&opts.apiPort, "api-port", 0, "diagnostics API port (0 = disabled)")
	runCmd.Flags().BoolVar(&opts.fresh, "fresh", false, "ignore any saved snapshot")
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts runOptions) error {
	setupLogging()

	runID := uuid.NewString()
	slog.Info("flowti simulation", "run_id", runID)

	cfg := settings.Default()
	if opts.settingsPath != "" {
		loaded, err := settings.LoadFile(opts.settingsPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}

	cat := catalog.Default()
	if opts.catalogPath != "" {
		loaded, err := catalog.LoadFile(opts.catalogPath)
		if err != nil {
			return err
		}
		cat = loaded
	}

	if err := ensureDir(opts.dbPath); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	db, err := persistence.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open snapshot db: %w", err)
	}
	defer db.Close()

	ctx := engine.NewContext(cfg, cat)
	if !opts.fresh && db.HasSnapshot() {
		doc, err := db.LoadSnapshot()
		if err != nil {
			// Malformed persisted state: keep the fresh in-memory world.
			slog.Warn("snapshot unreadable, starting fresh", "error", err)
		} else {
			ctx.Restore(doc)
			slog.Info("snapshot restored",
				"tick", ctx.Tick,
				"stamp", ctx.Clock.Stamp(),
				"inbox", ctx.Inbox.Len(),
				"orders", ctx.Orders.Len(),
			)
		}
	}
	db.SaveMeta("run_id", runID)

	ctx.Bus.Notify(func(ev event.Event) {
		slog.Debug("event", "kind", ev.Kind, "tick", ev.Tick)
	})

	sched := engine.New(ctx)

	var apiServer *api.Server
	if opts.apiPort > 0 {
		apiServer = &api.Server{Port: opts.apiPort}
		apiServer.Start()
	}

	sched.Start()
	defer sched.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(opts.intervalMs) * time.Millisecond)
	defer ticker.Stop()

	lastDay := ctx.Clock.DayIndex
	last := time.Now()

	for {
		select {
		case sig := <-sigCh:
			slog.Info("received signal, saving and shutting down", "signal", sig)
			saveSnapshot(db, ctx)
			return nil

		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			sched.Advance(float64(elapsed.Milliseconds()), opts.speed)

			if apiServer != nil {
				apiServer.Update(statusOf(runID, ctx))
			}

			if ctx.Clock.DayIndex != lastDay {
				lastDay = ctx.Clock.DayIndex
				dailyReport(ctx)
				saveSnapshot(db, ctx)
			}
		}
	}
}

// ensureDir creates the parent directory of the given file path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func setupLogging() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func saveSnapshot(db *persistence.DB, ctx *engine.Context) {
	doc, err := ctx.Snapshot()
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	if err := db.SaveSnapshot(doc); err != nil {
		slog.Error("snapshot save failed", "error", err)
		return
	}
	db.SaveMeta("saved_at", time.Now().UTC().Format(time.RFC3339))
}

func statusOf(runID string, ctx *engine.Context) api.Status {
	errs := make([]engine.TickError, len(ctx.Errors))
	copy(errs, ctx.Errors)
	return api.Status{
		RunID:     runID,
		Tick:      ctx.Tick,
		Clock:     *ctx.Clock,
		Stamp:     ctx.Clock.Stamp(),
		Inbox:     ctx.Inbox.Len(),
		Orders:    ctx.Orders.Len(),
		Timers:    ctx.Timers.Len(),
		PlayerXP:  ctx.Player.XP,
		Energy:    ctx.Player.Energy,
		Condition: string(ctx.Player.Condition),
		Errors:    errs,
	}
}

func dailyReport(ctx *engine.Context) {
	slog.Info("daily report",
		"stamp", ctx.Clock.Stamp(),
		"day", ctx.Clock.DayIndex,
		"phase", ctx.Clock.Phase,
		"inbox", ctx.Inbox.Len(),
		"orders", ctx.Orders.Len(),
		"timers", ctx.Timers.Len(),
		"xp", humanize.CommafWithDigits(ctx.Player.XP, 1),
		"energy", humanize.CommafWithDigits(ctx.Player.Energy, 1),
		"tasks_done", humanize.Comma(int64(ctx.Player.TasksCompleted)),
		"condition", ctx.Player.Condition,
	)
}
