package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/tiler/internal/config"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

var (
	configPath  string
	displayName string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "tiler",
	Short: "Keyboard-driven window tiling for X11",
	Long: dedent.Dedent(strings.Trim(`
		tiler moves and resizes windows into halves, quarters and grids of the
		monitor hosting the focused window, driven by global key chords.

		Start the daemon in the foreground:

		  $ tiler run

		Query or drive a running daemon:

		  $ tiler status
		  $ tiler action grid
		  $ tiler reload`, "\n")),
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ~/.config/tiler/config.yaml, or ~/.config/tiler.conf)")
	rootCmd.PersistentFlags().StringVar(&displayName, "display", "",
		"X display to connect to (default $DISPLAY)")

	rootCmd.AddCommand(
		newRunCmd(),
		newGeometriesCmd(),
		newWindowsCmd(),
		newStatusCmd(),
		newReloadCmd(),
		newActionCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion())
		},
	}
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if build, ok := debug.ReadBuildInfo(); ok && build.Main.Version != "" {
		return build.Main.Version
	}
	return "dev"
}

// loadConfig loads --config, or the default location.
func loadConfig() (*config.LoadResult, string, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, "", err
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(f *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(f, opts))
	}
	return slog.New(slog.NewJSONHandler(f, opts))
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
		}
		return src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
