package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"golang.org/x/term"

	"procsup/modules"
	"procsup/modules/platform/config"
)

const maxHistoryShown = 50

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(0, 3)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Shell represents the interactive shell
type Shell struct {
	app     *AppContext
	in      io.Reader
	out     io.Writer
	rl      *readline.Instance
	isTTY   bool
	running bool
}

// NewShell creates a shell reading commands from in and reporting to out.
// Readline is used only when in is a terminal.
func NewShell(app *AppContext, in io.Reader, out io.Writer) *Shell {
	isTTY := false
	if f, ok := in.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	return &Shell{
		app:   app,
		in:    in,
		out:   out,
		isTTY: isTTY,
	}
}

// Run starts the shell main loop. It returns nil on exit or end of input
// and the read error if the input stream fails.
func (s *Shell) Run(ctx context.Context) error {
	s.running = true

	if s.isTTY {
		return s.runInteractive(ctx)
	}
	return s.runNonInteractive(ctx)
}

// runInteractive runs the shell with readline support
func (s *Shell) runInteractive(ctx context.Context) error {
	shellCfg := s.shellConfig()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptStyle.Render("procsup>") + " ",
		HistoryFile:     config.GetHistoryPath(shellCfg),
		HistoryLimit:    shellCfg.HistoryLimit,
		AutoComplete:    s.buildCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          s.out,

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	s.rl = rl
	s.printWelcome()

	for s.running {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					fmt.Fprintln(s.out, "Use 'exit' or 'quit' to leave the shell.")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		s.handleLine(ctx, line)
	}

	return nil
}

// runNonInteractive runs the shell without readline (for pipes/non-TTY).
// Lines of any length are accepted; an oversized one is just an unknown command.
func (s *Shell) runNonInteractive(ctx context.Context) error {
	reader := bufio.NewReader(s.in)

	for s.running {
		line, err := reader.ReadString('\n')
		if line != "" {
			s.handleLine(ctx, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	return nil
}

func (s *Shell) handleLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if s.handleSpecialCommand(line) {
		return
	}

	s.executeCommand(ctx, line)
}

// printWelcome prints the welcome banner
func (s *Shell) printWelcome() {
	title := titleStyle.Render(modules.AppName) + " - " + modules.AppDescription
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, bannerStyle.Render(title))
	fmt.Fprintln(s.out, hintStyle.Render("  Type 'help' for available commands, 'exit' to quit."))
	fmt.Fprintln(s.out)
}

// handleSpecialCommand handles shell-specific commands
func (s *Shell) handleSpecialCommand(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	switch strings.ToLower(parts[0]) {
	case "exit", "quit", "q":
		fmt.Fprintln(s.out, "Goodbye!")
		s.running = false
		return true

	case "clear", "cls":
		if s.isTTY {
			fmt.Fprint(s.out, "\033[2J\033[H")
		}
		return true

	case "history":
		s.showHistory(parts[1:])
		return true
	}

	return false
}

// executeCommand looks up and runs a registered command, reporting its error
func (s *Shell) executeCommand(ctx context.Context, line string) {
	parts := strings.Fields(line)
	cmdName := parts[0]

	cmd := s.app.Registry.GetCommand(cmdName)
	if cmd == nil {
		fmt.Fprintf(s.out, "Unknown command: %s\n", cmdName)
		return
	}

	if err := cmd.Handler(ctx, parts[1:]); err != nil {
		s.app.Logger.Debug("command %s failed: %v", cmd.Name, err)
		fmt.Fprintln(s.out, describeError(err))
	}
}

// showHistory shows command history, optionally filtered by a search term
func (s *Shell) showHistory(args []string) {
	if s.rl == nil {
		fmt.Fprintln(s.out, "History not available in non-interactive mode.")
		return
	}

	data, err := os.ReadFile(config.GetHistoryPath(s.shellConfig()))
	if err != nil {
		fmt.Fprintln(s.out, "No history available.")
		return
	}

	searchTerm := ""
	if len(args) > 0 {
		searchTerm = strings.ToLower(args[0])
	}

	var matched []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if searchTerm != "" && !strings.Contains(strings.ToLower(line), searchTerm) {
			continue
		}
		matched = append(matched, line)
	}

	start := 0
	if len(matched) > maxHistoryShown {
		start = len(matched) - maxHistoryShown
	}
	for i := start; i < len(matched); i++ {
		fmt.Fprintf(s.out, "%4d  %s\n", i+1, matched[i])
	}
}

func (s *Shell) shellConfig() *config.ShellConfig {
	if s.app.Config != nil && s.app.Config.Settings != nil && s.app.Config.Settings.Shell != nil {
		return s.app.Config.Settings.Shell
	}
	return config.DefaultShellConfig()
}

// buildCompleter builds the readline completer
func (s *Shell) buildCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("exit"),
		readline.PcItem("quit"),
		readline.PcItem("clear"),
		readline.PcItem("history"),
	}

	for _, cmd := range s.app.Registry.GetAllCommands() {
		switch cmd.Name {
		case "help":
			items = append(items, readline.PcItem(cmd.Name,
				readline.PcItemDynamic(func(line string) []string {
					return s.app.Registry.GetCommandNames()
				}),
			))
		case "kill":
			items = append(items, readline.PcItem(cmd.Name,
				readline.PcItemDynamic(func(line string) []string {
					return s.trackedPIDs()
				}),
			))
		default:
			items = append(items, readline.PcItem(cmd.Name))
		}
	}

	return readline.NewPrefixCompleter(items...)
}

// trackedPIDs completes kill arguments from the table without touching the OS
func (s *Shell) trackedPIDs() []string {
	var pids []string
	for _, h := range s.app.Table.Snapshot() {
		pids = append(pids, fmt.Sprintf("%d", h.PID))
	}
	return pids
}

// filterInput filters special input characters
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
