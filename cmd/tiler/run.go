package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/1broseidon/tiler/internal/config"
	"github.com/1broseidon/tiler/internal/daemon"
	"github.com/1broseidon/tiler/internal/engine"
	"github.com/1broseidon/tiler/internal/hotkeys"
	"github.com/1broseidon/tiler/internal/ipc"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/runtimepath"
	"github.com/1broseidon/tiler/internal/x11"
)

type runOptions struct {
	force   bool
	verbose bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tiling daemon in the foreground",
		Long: dedent.Dedent(`
			Grabs the configured key chords and tiles the focused window when one
			is pressed. SIGHUP, "tiler reload" and edits to the config file reload
			the bindings. SIGINT and SIGTERM release every grab and exit.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.force, "force", "F", false, "start even if a pid file exists")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every key press and rebuild")
	return cmd
}

func runDaemon(opts runOptions) error {
	res, path, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	level := parseLevel(cfg.LogLevel)
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(os.Stderr, level)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", path, "files", len(res.Files), "modifier", cfg.Modifier)

	pidPath := cfg.PidFile
	if pidPath == "" {
		if pidPath, err = runtimepath.PidFilePath(); err != nil {
			return err
		}
	}
	pid, err := acquirePidFile(pidPath, opts.force)
	if err != nil {
		return err
	}
	defer func() {
		if err := pid.Release(); err != nil {
			logger.Warn("failed to remove pid file", "path", pidPath, "error", err)
		}
	}()

	display := displayName
	if display == "" {
		display = cfg.Display
	}
	conn, err := x11.NewConnection(display)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer conn.Close()
	defer conn.Quit()

	eng := engine.New(platform.NewLinuxBackend(conn), cfg, logger)

	handler := hotkeys.NewHandler(conn, eng, logger)
	if err := handler.Start(); err != nil {
		return fmt.Errorf("failed to start key handler: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	var changes <-chan struct{}
	if cfg.WatchConfig {
		watcher, err := config.NewWatcher(path, logger)
		if err != nil {
			logger.Warn("config file will not be watched", "error", err)
		} else {
			go watcher.Run(ctx)
			changes = watcher.Changes()
		}
	}

	loop := daemon.New(daemon.Options{
		Events: conn,
		Engine: eng,
		Logger: logger,
		LoadConfig: func() (*config.Config, error) {
			res, err := config.LoadFromPath(path)
			if err != nil {
				return nil, err
			}
			return res.Config, nil
		},
		ConfigPath:    path,
		ConfigChanges: changes,
		Hangup:        hangup,
		Topology:      handler.Changes(),
	})

	server, err := ipc.NewServer(loop, logger)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	err = loop.Run(ctx)
	if errors.Is(err, daemon.ErrEventsClosed) {
		logger.Error("lost connection to the X server")
	}
	return err
}
