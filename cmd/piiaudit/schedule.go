package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/audit"
	"mercator-hq/piiaudit/pkg/cli"
	"mercator-hq/piiaudit/pkg/policy"
	"mercator-hq/piiaudit/pkg/telemetry/health"
)

const serverShutdownTimeout = 10 * time.Second

var scheduleFlags struct {
	cron       string
	runOnStart bool
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run audits on a cron schedule",
	Long: `Run the audit pipeline on a cron schedule until interrupted.

A run that is still executing when the next tick fires causes that tick to
be skipped. When metrics are enabled an HTTP server exposes Prometheus
metrics together with /healthz, /readyz and /version. With policy.watch set,
file policies are reloaded as soon as the document changes.

Examples:
  # Use the schedule from the config file
  piiaudit schedule

  # Hourly, with an immediate first run
  piiaudit schedule --cron "@hourly" --run-on-start`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleFlags.cron, "cron", "", "override cron expression")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.runOnStart, "run-on-start", false, "run one audit immediately")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if scheduleFlags.cron != "" {
		e.cfg.Schedule.Cron = scheduleFlags.cron
	}
	if scheduleFlags.runOnStart {
		e.cfg.Schedule.RunOnStart = true
	}

	runner, err := e.newRunner(true, true)
	if err != nil {
		return cli.NewCommandError("schedule", err)
	}

	ctx, stop := cli.SignalContext(commandContext(cmd))
	defer stop()

	scheduler := audit.NewScheduler(runner, e.cfg.Schedule.Cron,
		audit.WithSchedulerMetrics(e.metrics),
		audit.WithSchedulerLogger(e.logger),
	)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("schedule", err)
	}
	defer scheduler.Stop()

	if e.cfg.Policy.Watch {
		if err := e.watchPolicies(ctx, runner.Policies()); err != nil {
			return cli.NewCommandError("schedule", err)
		}
	}

	errChan := make(chan error, 1)
	var srv *http.Server
	if e.cfg.Telemetry.Metrics.Enabled {
		srv, err = e.startServer(scheduler, errChan)
		if err != nil {
			return cli.NewCommandError("schedule", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Audit scheduled (%s)\n", e.cfg.Schedule.Cron)
	fmt.Fprintf(out, "✓ Policies: %s\n", describePolicies(runner.Policies()))
	if next := scheduler.NextRun(); next != nil {
		fmt.Fprintf(out, "✓ Next run: %s\n", next.Format(time.RFC3339))
	}
	if srv != nil {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", srv.Addr, e.cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if e.cfg.Schedule.RunOnStart {
		go func() {
			if _, err := scheduler.RunNow(ctx); err != nil && !errors.Is(err, audit.ErrRunInProgress) {
				e.logger.Error("initial audit run failed", "error", err)
			}
		}()
	}

	select {
	case err := <-errChan:
		return cli.NewCommandError("schedule", err)
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\nShutting down...")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.logger.Error("metrics server shutdown failed", "error", err)
		}
	}
	scheduler.Stop()
	fmt.Fprintln(out, "✓ Scheduler stopped")
	return nil
}

// describePolicies names the policy source. File policies include the time
// the active rule set was loaded.
func describePolicies(source audit.PolicySource) string {
	files, ok := source.(*audit.FilePolicies)
	if !ok {
		return source.Describe() + " (git, pulled before each run)"
	}
	return fmt.Sprintf("%s (%d rule(s), loaded %s)",
		files.Describe(),
		len(files.Store.Evaluator().Rules()),
		files.Store.LoadedAt().Format(time.RFC3339),
	)
}

// watchPolicies reloads file policies when the document changes. Git
// policies are pulled before every run and are not watched.
func (e *env) watchPolicies(ctx context.Context, source audit.PolicySource) error {
	files, ok := source.(*audit.FilePolicies)
	if !ok {
		e.logger.Info("policy watch ignored for git policies")
		return nil
	}

	watcher, err := policy.NewFileWatcher(files.Store.Path(), e.cfg.Policy.WatchDebounce, e.logger)
	if err != nil {
		return fmt.Errorf("failed to watch policies: %w", err)
	}

	go func() {
		defer watcher.Stop()
		err := watcher.Watch(ctx, func() error {
			err := files.Store.Reload()
			e.metrics.RecordPolicyReload(len(files.Store.Evaluator().Rules()), err)
			return err
		})
		if err != nil {
			e.logger.Error("policy watcher stopped", "error", err)
		}
	}()
	return nil
}

// startServer serves metrics and health endpoints in the background.
// Serve errors are delivered on errChan.
func (e *env) startServer(scheduler *audit.Scheduler, errChan chan<- error) (*http.Server, error) {
	checker := health.New(0)
	checker.Register("scheduler", func(context.Context) error {
		if !scheduler.IsRunning() {
			return fmt.Errorf("scheduler is not running")
		}
		return nil
	})
	checker.Register("last_run", func(context.Context) error {
		if last := scheduler.Last(); last.Err != nil {
			return fmt.Errorf("last run failed at %s: %w", last.FinishedAt.Format(time.RFC3339), last.Err)
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.Handle(e.cfg.Telemetry.Metrics.Path, e.metrics.Handler())
	health.Register(mux, checker, health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	addr := e.cfg.Telemetry.Metrics.ListenAddress
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		e.logger.Info("metrics server listening", "address", srv.Addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server error: %w", err)
		}
	}()
	return srv, nil
}
