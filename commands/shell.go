package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
	"github.com/penwyp/go-virus-feed/internal/util"
)

const shellHistoryFile = "~/.go-virus-feed/shell_history"

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive prompt over the virus feed",
	Long: `Starts a line-oriented prompt with history and completion. The same
search and click operations as the terminal browser are available as
commands; type 'help' for the list.`,
	RunE: runShell,
}

var shellCommands = []string{"search", "click", "show", "tiles", "export", "help", "quit", "exit"}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	if err := initLogging(false); err != nil {
		return err
	}
	defer util.CloseLogger()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, _, err := loadPipeline(config)
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeShell)

	historyPath := expandPath(shellHistoryFile)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer saveShellHistory(line, historyPath)

	s := newShell(p, config, cmd.OutOrStdout())
	fmt.Fprintf(s.out, "%d viruses loaded. Type 'help' for commands.\n", len(p.Representatives()))

	for {
		input, err := line.Prompt("virus> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		if s.exec(input) {
			return nil
		}
	}
}

func saveShellHistory(line *liner.State, path string) {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}

func completeShell(line string) []string {
	var completions []string
	lower := strings.ToLower(line)
	for _, c := range shellCommands {
		if strings.HasPrefix(c, lower) {
			completions = append(completions, c)
		}
	}
	return completions
}

// shell executes prompt commands against a pipeline
type shell struct {
	pipeline *browser.Pipeline
	config   *browser.Config
	out      io.Writer
}

func newShell(p *browser.Pipeline, config *browser.Config, out io.Writer) *shell {
	return &shell{pipeline: p, config: config, out: out}
}

// exec runs one command line and reports whether the shell should exit
func (s *shell) exec(input string) bool {
	input = strings.TrimSpace(input)
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		s.help()
	case "search", "s":
		s.search(rest)
	case "click", "c":
		err = s.click(rest)
	case "show":
		err = s.show()
	case "tiles", "ls":
		err = formatter.NewTableFormatter().Format(s.out, s.pipeline.Snapshot().Tiles)
	case "export":
		err = s.export(strings.Fields(rest))
	default:
		err = fmt.Errorf("unknown command %q (type 'help' for commands)", name)
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *shell) help() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  search <text>                 Filter viruses by title, empty text shows all")
	fmt.Fprintln(s.out, "  click <id>                    Select a virus of the current feed")
	fmt.Fprintln(s.out, "  show                          Show the selected virus and its timeline")
	fmt.Fprintln(s.out, "  tiles                         List the current feed")
	fmt.Fprintln(s.out, "  export <file> [width height]  Write the timeline as svg, png or json")
	fmt.Fprintln(s.out, "  help                          Show this help")
	fmt.Fprintln(s.out, "  quit                          Leave the shell")
}

func (s *shell) search(q string) {
	s.pipeline.QueryChanged(q)
	n := len(s.pipeline.View())
	if n == 0 {
		fmt.Fprintf(s.out, "No virus matches %q, selection unchanged\n", q)
		return
	}
	id, _ := s.pipeline.Selected()
	fmt.Fprintf(s.out, "%d matches, selected %d\n", n, id)
}

func (s *shell) click(arg string) error {
	id, err := parseEntityID(arg)
	if err != nil {
		return err
	}
	if err := s.pipeline.TileClicked(id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Selected %d\n", id)
	return nil
}

func (s *shell) show() error {
	scene, err := s.pipeline.Layout(s.config.ExportWidth, s.config.ExportHeight)
	if err != nil {
		return err
	}
	panel := s.pipeline.Snapshot().Panel

	fmt.Fprintf(s.out, "Virus %d: %s\n", scene.EntityID, panel.Title)
	fmt.Fprintf(s.out, "  first seen %s %s\n", panel.Day, panel.Time)
	if panel.Background != "" {
		fmt.Fprintf(s.out, "  image %s\n", panel.Background)
	}
	for _, pt := range scene.Points {
		fmt.Fprintf(s.out, "  %8s  %-6s %s\n",
			util.FormatMinutes(pt.Record.MinutesSinceFirst), pt.Record.Time, pt.Record.Media)
	}
	if scene.Skipped > 0 {
		fmt.Fprintf(s.out, "  (%d records without elapsed time)\n", scene.Skipped)
	}
	return nil
}

func (s *shell) export(args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return fmt.Errorf("usage: export <file> [width height]")
	}

	width, height := s.config.ExportWidth, s.config.ExportHeight
	if len(args) == 3 {
		w, errW := strconv.Atoi(args[1])
		h, errH := strconv.Atoi(args[2])
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("width and height must be positive integers")
		}
		width, height = float64(w), float64(h)
	}

	format, err := renderFormatFor("", args[0])
	if err != nil {
		return err
	}
	scene, err := s.pipeline.Layout(width, height)
	if err != nil {
		return err
	}
	exporter := formatter.Exporter{Format: format, Theme: s.pipeline.Theme()}
	if err := exporter.WriteFile(args[0], scene); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Wrote %s\n", args[0])
	return nil
}
