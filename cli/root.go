// Package cli holds the zencli commands.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/yhkl-dev/zencli/audio"
	"github.com/yhkl-dev/zencli/catalog"
	"github.com/yhkl-dev/zencli/config"
	"github.com/yhkl-dev/zencli/device"
	"github.com/yhkl-dev/zencli/logging"
	"github.com/yhkl-dev/zencli/session"
	"github.com/yhkl-dev/zencli/ui"
	"go.uber.org/multierr"
)

var rootCmd = &cobra.Command{
	Use:   "zencli",
	Short: "Guided meditation timer for the terminal",
	Long: `zencli plays a meditation track while counting down its length.
Pick a track, start, pause or reset the session; the track stops when the
countdown reaches zero.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	cfgFile  string
	backend  string
	logLevel string
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/zencli/config.toml)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "audio backend: beep or mpv")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// runtime is what every command needs before it does anything
type runtime struct {
	loader  *config.Loader
	cfg     *config.Config
	catalog *catalog.Static
	logger  *slog.Logger
	closers []io.Closer
}

// setup loads config and catalog and builds the logger. Logs go to the
// configured directory, or defaultLogDir when that is empty, or logOut
// when both are empty.
func setup(defaultLogDir string, logOut io.Writer) (*runtime, error) {
	loader := config.NewLoader(afero.NewOsFs(), cfgFile)
	if backend != "" {
		loader.Set("player.backend", backend)
	}
	if logLevel != "" {
		loader.Set("log.level", logLevel)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	dir := cfg.Log.Dir
	if dir == "" {
		dir = defaultLogDir
	}
	logger, closer, err := logging.New(dir, cfg.Log.Level, logOut)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		closer.Close()
		return nil, errors.Wrap(err, "invalid track catalog")
	}

	logger.Debug("configuration loaded", "file", loader.ConfigFile(), "backend", cfg.Player.Backend, "tracks", len(cat.Tracks()))
	return &runtime{
		loader:  loader,
		cfg:     cfg,
		catalog: cat,
		logger:  logger,
		closers: []io.Closer{closer},
	}, nil
}

func (rt *runtime) Close() error {
	var err error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, rt.closers[i].Close())
	}
	return err
}

// sessionClock drives session countdowns; nil means the wall clock
var sessionClock session.Clock

func (rt *runtime) controllerOptions(svc audio.Service) session.Options {
	return session.Options{
		Audio:           svc,
		Clock:           sessionClock,
		Logger:          rt.logger,
		LoadTimeout:     rt.cfg.Player.LoadTimeout,
		TeardownTimeout: rt.cfg.Player.TeardownTimeout,
	}
}

// outputProber reports the audio outputs the guard watches
var outputProber device.Prober = device.SystemProber{}

// startGuard pauses a running session when the external audio output in
// use disappears
func (rt *runtime) startGuard(ctx context.Context, ctrl *session.Controller) {
	if !rt.cfg.Guard.Enabled {
		return
	}
	monitor := device.NewMonitor(outputProber, rt.cfg.Guard.Interval, func(o device.Output) {
		if err := ctrl.Pause(ctx); err != nil && !errors.Is(err, session.ErrClosed) {
			rt.logger.Warn("pause after output loss failed", "output", o.Name, "error", err)
		}
	}, rt.logger)
	monitor.Start(ctx)
}

func defaultLogDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "zencli")
}

func runTUI(cmd *cobra.Command, args []string) error {
	// the TUI owns the terminal, so logs never go to stderr
	rt, err := setup(defaultLogDir(), io.Discard)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newAudioService(ctx, rt.cfg, rt.logger)
	if err != nil {
		return errors.Wrap(err, "failed to start audio backend")
	}
	defer svc.Close()

	app := ui.NewApp(ctx, rt.cfg, rt.catalog, rt.logger)

	opts := rt.controllerOptions(svc)
	opts.Catalog = rt.catalog
	opts.Notifier = app
	opts.OnChange = app.OnChange
	ctrl, err := session.NewController(ctx, opts)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	app.SetController(ctrl)

	rt.startGuard(ctx, ctrl)
	if rt.loader.ConfigFile() != "" {
		app.WatchConfig(rt.loader)
	}

	err = app.Run()
	rt.logger.Info("zencli exiting")
	return err
}
