package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/javanhut/Canviz/internal/config"
	"github.com/javanhut/Canviz/internal/ipc"
	"github.com/javanhut/Canviz/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "get":
		os.Exit(runGet(os.Args[2:]))
	case "next", "previous", "pause", "resume":
		os.Exit(runOutputCommand(os.Args[1], os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: canviz <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the wallpaper daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon and output status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set PATH            Show an image or directory")
	fmt.Fprintln(w, "  get                 Print the wallpaper of each output")
	fmt.Fprintln(w, "  next                Advance the slideshow")
	fmt.Fprintln(w, "  previous            Step the slideshow back")
	fmt.Fprintln(w, "  pause               Pause the slideshow timer")
	fmt.Fprintln(w, "  resume              Resume the slideshow timer")
	fmt.Fprintln(w, "  reload              Reload the configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'canviz <command> --help' for command-specific options.")
}

// parseFlags parses args and maps help and usage errors to exit codes.
// ok is false when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: canviz status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("backend:        %s\n", status.Backend)
	if status.ConfigPath != "" {
		fmt.Printf("config:         %s\n", status.ConfigPath)
	}
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	heading := outputHeading(term.IsTerminal(int(os.Stdout.Fd())))
	for _, o := range status.Outputs {
		fmt.Printf("\n%s (%dx%d, scale %d, %s)\n", heading(o.Name), o.Width, o.Height, o.Scale, o.State)
		wallpaper := o.Wallpaper
		if wallpaper == "" {
			wallpaper = "none"
		}
		fmt.Printf("  wallpaper:  %s\n", wallpaper)
		if o.Workspace != nil {
			fmt.Printf("  workspace:  %d\n", *o.Workspace)
		}
		fmt.Printf("  transition: %s\n", o.Transition)
		fmt.Printf("  mode:       %s\n", o.Mode)
		fmt.Printf("  slideshow:  %s\n", slideshowState(o))
	}
	return 0
}

// outputHeading styles output names in bold when writing to a terminal.
func outputHeading(tty bool) func(string) string {
	if !tty {
		return func(s string) string { return s }
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	return func(s string) string { return style.Render(s) }
}

func slideshowState(o ipc.OutputStatus) string {
	switch {
	case !o.SlideshowActive:
		return "off"
	case o.SlideshowPaused:
		return "paused"
	default:
		return "running"
	}
}

func runSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: canviz set [--output NAME] <path>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show an image, or a directory of images as a slideshow.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	output := fs.String("output", "", "Output name (default: all outputs)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "set requires exactly one <path>")
		fs.Usage()
		return 2
	}

	path, err := absPath(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	msg, err := ipc.NewClient().SetWallpaper(*output, path)
	return report(msg, err)
}

// absPath resolves path against the working directory of the caller,
// which the daemon does not share. ~ is left for the daemon to expand.
func absPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

func runGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: canviz get [--output NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the wallpaper shown on each output.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	output := fs.String("output", "", "Output name (default: all outputs)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "get takes no arguments")
		fs.Usage()
		return 2
	}

	walls, err := ipc.NewClient().GetWallpapers(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, w := range walls {
		path := w.Path
		if path == "" {
			path = "none"
		}
		fmt.Printf("%s: %s\n", w.Output, path)
	}
	return 0
}

var outputCommandHelp = map[string]string{
	"next":     "Advance the slideshow to the next image.",
	"previous": "Step the slideshow back to the previous image.",
	"pause":    "Pause the slideshow timer.",
	"resume":   "Resume the slideshow timer.",
}

func runOutputCommand(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: canviz %s [--output NAME]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, outputCommandHelp[name])
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	output := fs.String("output", "", "Output name (default: all outputs)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	var msg string
	var err error
	switch name {
	case "next":
		msg, err = client.Next(*output)
	case "previous":
		msg, err = client.Previous(*output)
	case "pause":
		msg, err = client.Pause(*output)
	case "resume":
		msg, err = client.Resume(*output)
	}
	return report(msg, err)
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: canviz reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to reread its configuration.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}
	msg, err := ipc.NewClient().Reload()
	return report(msg, err)
}

func report(msg string, err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if msg != "" {
		fmt.Println(msg)
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  canviz config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  canviz config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/canviz/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/canviz/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			cfg, err = loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runTUI(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: canviz tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive view of the running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Select output")
		fmt.Fprintln(os.Stderr, "  n/p       Next/previous wallpaper")
		fmt.Fprintln(os.Stderr, "  space     Pause/resume slideshow")
		fmt.Fprintln(os.Stderr, "  s         Set wallpaper path")
		fmt.Fprintln(os.Stderr, "  r         Reload daemon config")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "tui takes no arguments")
		return 2
	}

	if err := tui.Run(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
