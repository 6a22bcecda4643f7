package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// CommandHandler is the function signature for command handlers
type CommandHandler func(ctx context.Context, args []string) error

// Command represents a shell command
type Command struct {
	Name        string
	Aliases     []string
	Category    string
	Description string
	Usage       string
	Examples    []string
	Handler     CommandHandler
	Order       int
}

// Registry holds all registered commands
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// categoryOrder is the order categories are printed in
var categoryOrder = []string{
	"Processes",
	"System",
	"Shell",
}

// RegisterCommand registers a command
func (r *Registry) RegisterCommand(cmd *Command) {
	r.commands[cmd.Name] = cmd

	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
}

// GetCommand returns a command by name or alias
func (r *Registry) GetCommand(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}

	if cmdName, ok := r.aliases[name]; ok {
		return r.commands[cmdName]
	}

	return nil
}

// GetAllCommands returns all registered commands
func (r *Registry) GetAllCommands() []*Command {
	commands := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		commands = append(commands, cmd)
	}

	// Sort by order then name
	sort.Slice(commands, func(i, j int) bool {
		if commands[i].Order != commands[j].Order {
			return commands[i].Order < commands[j].Order
		}
		return commands[i].Name < commands[j].Name
	})

	return commands
}

// GetCommandsByCategory returns commands grouped by category
func (r *Registry) GetCommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)

	for _, cmd := range r.GetAllCommands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}

	return categories
}

// PrintCommands prints all commands
func (r *Registry) PrintCommands(w io.Writer) {
	categories := r.GetCommandsByCategory()

	for _, category := range categoryOrder {
		cmds, ok := categories[category]
		if !ok || len(cmds) == 0 {
			continue
		}

		fmt.Fprintf(w, "  %s:\n", category)
		for _, cmd := range cmds {
			aliases := ""
			if len(cmd.Aliases) > 0 {
				aliases = fmt.Sprintf(" (%s)", strings.Join(cmd.Aliases, ", "))
			}
			fmt.Fprintf(w, "    %-20s %s%s\n", cmd.Usage, cmd.Description, aliases)
		}
		fmt.Fprintln(w)
	}
}

// PrintCommandHelp prints help for a specific command
func (r *Registry) PrintCommandHelp(w io.Writer, name string) {
	cmd := r.GetCommand(name)
	if cmd == nil {
		fmt.Fprintf(w, "Unknown command: %s\n", name)
		return
	}

	fmt.Fprintf(w, "Command: %s\n", cmd.Name)
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(w, "Aliases: %s\n", strings.Join(cmd.Aliases, ", "))
	}
	fmt.Fprintf(w, "Category: %s\n", cmd.Category)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Description:\n  %s\n", cmd.Description)
	fmt.Fprintln(w)

	if cmd.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", cmd.Usage)
		fmt.Fprintln(w)
	}

	if len(cmd.Examples) > 0 {
		fmt.Fprintln(w, "Examples:")
		for _, example := range cmd.Examples {
			fmt.Fprintf(w, "  %s\n", example)
		}
	}
}

// GetCommandNames returns all command names (for completion)
func (r *Registry) GetCommandNames() []string {
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}

	sort.Strings(names)
	return names
}
