package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tiler/internal/binding"
	"github.com/1broseidon/tiler/internal/config"
	"github.com/1broseidon/tiler/internal/engine"
	"github.com/1broseidon/tiler/internal/ipc"
	"github.com/1broseidon/tiler/internal/platform"
	"github.com/1broseidon/tiler/internal/x11"
)

// localEngine connects to X and prepares an engine without grabbing keys,
// for commands that work when no daemon runs.
func localEngine() (*engine.Engine, func(), error) {
	res, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	display := displayName
	if display == "" {
		display = res.Config.Display
	}
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to display: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(platform.NewLinuxBackend(conn), res.Config, quiet)
	if err := eng.Prepare(); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return eng, conn.Close, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGeometriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geometries",
		Short: "Print monitors, usable areas and every binding's target",
		Long: "Asks the running daemon for its binding table. Without a daemon the\n" +
			"table is computed locally, with no keys bound.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := ipc.NewClient().GetMonitors()
			if errors.Is(err, ipc.ErrNotRunning) {
				eng, done, lerr := localEngine()
				if lerr != nil {
					return lerr
				}
				defer done()
				local := ipc.NewMonitorsData(eng.Monitors(), eng.Table())
				data, err = &local, nil
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			printGeometries(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	return cmd
}

func printGeometries(w io.Writer, data *ipc.MonitorsData) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range data.Monitors {
		fmt.Fprintf(tw, "monitor %d\t%s\t(%d, %d), (%d, %d)\tusable %s\n",
			m.ID, m.Name, m.X, m.Y, m.Width, m.Height, m.Usable)
		for _, b := range m.Bindings {
			target := "-"
			switch {
			case b.Monitor != nil:
				target = fmt.Sprintf("monitor %d %s", *b.Monitor, *b.Target)
			case b.Target != nil:
				target = b.Target.String()
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.Action, b.Keysym, target)
		}
	}
	tw.Flush()
}

func newWindowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List windows with their desktop, monitor and geometry",
		Long: "'*' marks windows on the current desktop, '+' those on the monitor of\n" +
			"the focused window.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := ipc.NewClient().ListWindows()
			if errors.Is(err, ipc.ErrNotRunning) {
				eng, done, lerr := localEngine()
				if lerr != nil {
					return lerr
				}
				defer done()
				local := ipc.WindowsData{ActiveMonitor: eng.ActiveMonitor()}
				if local.Windows, err = eng.ListWindows(local.ActiveMonitor); err != nil {
					return err
				}
				data = &local
			}
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			printWindows(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	return cmd
}

func printWindows(w io.Writer, data *ipc.WindowsData) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  \tID\tKIND\tDESKTOP\tMONITOR\tGEOMETRY\tCLASS\tTITLE")
	for _, win := range data.Windows {
		kind := "regular"
		if !win.Regular {
			kind = "system"
		}
		fmt.Fprintf(tw, "%s\t0x%x\t%s\t%d\t%d\t%s\t%s\t%s\n",
			win.Marker(), uint32(win.ID), kind, win.Desktop, win.Monitor, win.Bounds, win.Class, win.Title)
	}
	tw.Flush()
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "daemon_running: %v\n", status.DaemonRunning)
			fmt.Fprintf(out, "uptime_seconds: %d\n", status.UptimeSeconds)
			fmt.Fprintf(out, "config:         %s\n", status.ConfigPath)
			fmt.Fprintf(out, "modifier:       %s\n", status.Modifier)
			fmt.Fprintf(out, "monitors:       %d (active %d)\n", status.Monitors, status.ActiveMonitor)
			fmt.Fprintf(out, "bound_actions:  %d\n", status.BoundActions)
			fmt.Fprintf(out, "grabs:          %d\n", status.Grabs)
			for _, w := range status.Warnings {
				fmt.Fprintf(out, "warning:        %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON")
	return cmd
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the daemon's configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ipc.NewClient().Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reloaded")
			return nil
		},
	}
}

func newActionCmd() *cobra.Command {
	names := make([]string, 0, binding.ActionCount)
	for _, a := range binding.Actions() {
		names = append(names, a.String())
	}
	return &cobra.Command{
		Use:       "action <name>",
		Short:     "Run an action in the daemon as if its key was pressed",
		Long:      "Actions: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := binding.ParseAction(args[0]); err != nil {
				return err
			}
			return ipc.NewClient().RunAction(args[0])
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and report binding problems",
		Long: "Loads the configuration and resolves every binding against the\n" +
			"display's keyboard, without grabbing anything.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, path, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", path)

			var problems []string
			problems = append(problems, res.Config.Warnings...)
			for _, name := range res.Config.BindingNames() {
				if _, err := binding.ParseAction(name); err != nil {
					problems = append(problems, fmt.Sprintf("%s (%s): %v", name, bindingSource(res, name), err))
				}
			}
			if _, unknown := binding.ParseModifiers(res.Config.Modifier); len(unknown) > 0 {
				problems = append(problems, fmt.Sprintf("modifier: unknown %s", strings.Join(unknown, ", ")))
			}
			problems = append(problems, unresolvedKeys(res.Config)...)

			if len(problems) == 0 {
				fmt.Fprintln(out, "config: ok")
				return nil
			}
			sort.Strings(problems)
			for _, p := range problems {
				fmt.Fprintf(out, "warning: %s\n", p)
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}
}

func bindingSource(res *config.LoadResult, name string) string {
	if src, ok := res.Sources["bindings."+name]; ok {
		return formatSource(src)
	}
	return "default"
}

// unresolvedKeys reports key names the display's keyboard cannot produce.
// Without a display it reports nothing.
func unresolvedKeys(cfg *config.Config) []string {
	display := displayName
	if display == "" {
		display = cfg.Display
	}
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil
	}
	defer conn.Close()

	var out []string
	for name, key := range cfg.Bindings {
		if key == "" {
			continue
		}
		if _, err := conn.ResolveKeysym(key); err != nil {
			out = append(out, fmt.Sprintf("%s = %s: %v", name, key, err))
		}
	}
	return out
}
