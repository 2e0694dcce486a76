package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/librescoot/timedfsm"
	"github.com/librescoot/timedfsm/host"
	"github.com/librescoot/timedfsm/inspect"
	"github.com/librescoot/timedfsm/internal/config"
	"github.com/librescoot/timedfsm/internal/logging"
	"github.com/librescoot/timedfsm/states"
)

type playOptions struct {
	configPath string
	debugAddr  string
	duration   time.Duration
	logLevel   string
	logOut     io.Writer
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the clips of a config file in sequence",
	Long: `Plays each configured clip as a state of a timed state machine.
Playback ends once the last clip's dwell time has passed, unless the
sequence repeats, the duration elapses or the process is interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := playOptions{logOut: os.Stderr}
		opts.configPath, _ = cmd.Flags().GetString("config")
		opts.debugAddr, _ = cmd.Flags().GetString("debug-addr")
		opts.duration, _ = cmd.Flags().GetDuration("duration")
		opts.logLevel, _ = cmd.Flags().GetString("log-level")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPlay(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("config", "c", "clips.yaml", "Clip sequence config file")
	playCmd.Flags().String("debug-addr", "", "Serve /state and /metrics on this address (overrides debug_addr)")
	playCmd.Flags().Duration("duration", 0, "Stop after this much wall time (0 = no limit)")
}

func runPlay(ctx context.Context, opts playOptions) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := logging.NewWithWriter(opts.logOut, level)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.debugAddr != "" {
		cfg.DebugAddr = opts.debugAddr
	}

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}
	ctx, finish := context.WithCancel(ctx)
	defer finish()

	clock := timedfsm.NewGameClock(timedfsm.WithScale(cfg.TimeScale))
	machineOpts := []timedfsm.Option{timedfsm.WithLogger(logger)}
	var loopOpts []host.Option

	var rec *inspect.Recorder
	if cfg.DebugAddr != "" {
		reg := prometheus.NewRegistry()
		metrics := inspect.NewMetrics(reg)
		machineOpts = append(machineOpts, metrics.MachineOptions()...)
		rec = inspect.NewRecorder(inspect.WithMetrics(metrics))

		shutdown, err := serveDebug(cfg.DebugAddr, inspect.NewHandler(rec, reg), logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	m := timedfsm.New(clock, nil, machineOpts...)
	seq := buildSequence(m, states.NewLogPlayer(logger), cfg)
	last := seq[len(seq)-1]

	loopOpts = append(loopOpts, host.WithLogger(logger), host.WithAfterFrame(func() {
		if rec != nil {
			rec.Capture(m)
		}
		if !cfg.Repeat && m.State() == last && m.IsChangeAllowed() {
			finish()
		}
	}))
	loop := host.New(m, clock, cfg.Host(), loopOpts...)

	logger.Info("playback started", "clips", len(seq), "repeat", cfg.Repeat, "time_scale", cfg.TimeScale)
	m.ForceChangeState(seq[0])
	err = loop.Run(ctx)
	m.ForceChangeState(nil)
	logger.Info("playback stopped", "frames", loop.Frames(), "fixed_steps", loop.FixedSteps(), "logical_time", clock.Now())

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// buildSequence creates one clip state per configured clip, each queuing
// the next on entry. With Repeat the last clip chains back to the first.
func buildSequence(m timedfsm.Changer, player states.Player, cfg *config.Config) []*states.AudioClip {
	seq := make([]*states.AudioClip, len(cfg.Clips))
	for i, c := range cfg.Clips {
		opts := []states.AudioClipOption{states.WithDelay(c.Delay)}
		if c.Wait {
			opts = append(opts, states.WithClipLengthDelay())
		}
		if c.Loop {
			opts = append(opts, states.WithLoop())
		}
		seq[i] = states.NewAudioClip(m, player, &states.Clip{Name: c.Name, Length: c.Length}, opts...)
	}
	for i := 0; i < len(seq)-1; i++ {
		seq[i].SetNext(seq[i+1])
	}
	if cfg.Repeat && len(seq) > 1 {
		seq[len(seq)-1].SetNext(seq[0])
	}
	return seq
}

func serveDebug(addr string, handler http.Handler, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debug server: %w", err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("debug server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("debug server stopped", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("debug server shutdown", "error", err)
			srv.Close()
		}
	}, nil
}
