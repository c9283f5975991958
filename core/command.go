package core

import (
	"errors"
	"sync"
)

// Console errors. Handlers return these (or wrap nothing at all) so the
// reply line carries a stable message.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
	ErrInvalidZone    = errors.New("zone out of range")
	ErrZoneNotStored  = errors.New("zone -1 cannot be stored")
	ErrInvalidCivil   = errors.New("invalid date or time")
	ErrBusy           = errors.New("menu is open")
)

// CommandHandler runs one console command. args excludes the command name.
// The returned text follows "ok" on the reply line.
type CommandHandler func(args []string) (string, error)

// Command is a named console command.
type Command struct {
	Name    string
	Usage   string // argument synopsis shown by help, e.g. "<z>"
	Handler CommandHandler
}

// CommandRegistry maps command names to handlers and keeps registration
// order for help output.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	order    []string
}

// NewCommandRegistry creates an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command. Registering a name twice replaces the handler
// but keeps its original position.
func (r *CommandRegistry) Register(name, usage string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = &Command{Name: name, Usage: usage, Handler: handler}
}

// Lookup returns the command registered under name.
func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch splits line into words and runs the named command.
func (r *CommandRegistry) Dispatch(line string) (string, error) {
	words := splitWords(line)
	if len(words) == 0 {
		return "", ErrUnknownCommand
	}
	cmd, ok := r.Lookup(words[0])
	if !ok {
		return "", ErrUnknownCommand
	}
	return cmd.Handler(words[1:])
}

// Help lists every command with its usage, one per line, in registration
// order.
func (r *CommandRegistry) Help() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		cmd := r.commands[name]
		if cmd.Usage == "" {
			lines = append(lines, name)
			continue
		}
		lines = append(lines, name+" "+cmd.Usage)
	}
	return lines
}

// splitWords splits on spaces and tabs. Double quotes are dropped, so
// `set_epoch "2024/01/31 09:41"` and `set_epoch 2024/01/31 09:41` parse the
// same.
func splitWords(line string) []string {
	var words []string
	start := -1
	for i := 0; i <= len(line); i++ {
		sep := i == len(line) || line[i] == ' ' || line[i] == '\t' || line[i] == '"' || line[i] == '\r'
		switch {
		case sep && start >= 0:
			words = append(words, line[start:i])
			start = -1
		case !sep && start < 0:
			start = i
		}
	}
	return words
}
