package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/schedule"
	"github.com/spf13/cobra"
)

var (
	remindJSON     bool
	remindStdin    bool
	remindInterval time.Duration
	remindHour     int
	remindWatch    bool
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder daemon",
	Long: `Run the reminder daemon until interrupted. It scans once on start and
then on every poll inside the reminder hour.

With --stdin, control messages are read as JSON lines:
  {"type":"CHECK_REMINDERS"}
  {"type":"ACTION","noteId":3,"action":"snooze-60"}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var extra []tally.Option
		if remindJSON {
			extra = append(extra, tally.WithNotifier(schedule.NewWriterNotifier(os.Stdout)))
		}
		if cmd.Flags().Changed("interval") {
			extra = append(extra, tally.WithPollInterval(remindInterval))
		}
		if cmd.Flags().Changed("hour") {
			extra = append(extra, tally.WithReminderHour(remindHour))
		}
		if cmd.Flags().Changed("watch") {
			extra = append(extra, tally.WithWatch(remindWatch))
		}
		extra = append(extra, tally.WithErrorHandler(func(err error) {
			slog.Error("reminder daemon failure", "error", err)
		}))

		svc, opts, err := openService(extra...)
		if err != nil {
			return err
		}

		// First signal stops the daemon gracefully, a second one exits at once.
		ctx := lifecycle.NewSignalContext(context.Background(), lifecycle.WithForceExit(2))
		defer ctx.Stop()

		var controls io.Reader
		if remindStdin {
			controls = os.Stdin
		}
		return serveReminders(ctx, func() *schedule.Daemon {
			return tally.NewDaemon(svc, opts...)
		}, controls)
	},
}

// serveReminders runs daemons built by newDaemon under a supervisor until ctx
// is cancelled, forwarding control messages read from controls when set.
func serveReminders(ctx *lifecycle.SignalContext, newDaemon func() *schedule.Daemon, controls io.Reader) error {
	var current atomic.Pointer[schedule.Daemon]
	spec := supervisor.Spec{
		Name: "tally-reminders",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			d := newDaemon()
			current.Store(d)
			return d, nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: time.Second,
			MaxInterval:     time.Minute,
			Multiplier:      2,
			ResetDuration:   10 * time.Minute,
			MaxRestarts:     5,
			MaxDuration:     time.Hour,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	// The shutdown hook stops the supervisor and waits for the daemon.
	sup := supervisor.New("tally", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start reminder daemon: %w", err)
	}
	slog.Info("reminder daemon running")

	var stopErr error
	lifecycle.OnShutdown(ctx, func() {
		slog.Info("shutting down")
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stopErr = sup.Stop(stopCtx)
	})

	if controls != nil {
		go readControls(ctx, controls, &current)
	}

	<-ctx.Done()
	ctx.Wait()
	return stopErr
}

// readControls forwards JSON-line control messages to the running daemon.
func readControls(ctx context.Context, r io.Reader, current *atomic.Pointer[schedule.Daemon]) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c schedule.Control
		if err := json.Unmarshal(line, &c); err != nil {
			slog.Warn("ignoring malformed control message", "error", err)
			continue
		}
		d := current.Load()
		if d == nil {
			slog.Warn("daemon not running, control message dropped", "type", c.Type)
			continue
		}
		if err := d.Send(ctx, c); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Warn("control message rejected", "type", c.Type, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("control input closed", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().BoolVar(&remindJSON, "json", false, "Print notifications as JSON lines on stdout")
	remindCmd.Flags().BoolVar(&remindStdin, "stdin", false, "Read control messages from stdin")
	remindCmd.Flags().DurationVar(&remindInterval, "interval", schedule.DefaultPollInterval, "Poll interval")
	remindCmd.Flags().IntVar(&remindHour, "hour", schedule.DefaultReminderHour, "Local hour during which polls raise reminders")
	remindCmd.Flags().BoolVar(&remindWatch, "watch", false, "Scan whenever the notes change on disk")
}
