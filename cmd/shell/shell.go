package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"lotto/application"
	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// Shell is an interactive console over the lottery handler
type Shell struct {
	handler  application.LotteryHandler
	in       io.Reader
	out      io.Writer
	commands map[string]Command
	history  []string
	caller   *common.Address // identity used for buy, reveal and claim
	running  bool
}

// Command represents a shell command
type Command struct {
	Handler     CommandHandler
	Description string
	Usage       string
	Category    string // "lottery", "ledger", "utility"
}

// CommandHandler is a function that handles a shell command
type CommandHandler func(ctx context.Context, args []string) error

// NewShell creates a new shell reading from in and writing to out
func NewShell(handler application.LotteryHandler, in io.Reader, out io.Writer) *Shell {
	s := &Shell{
		handler: handler,
		in:      in,
		out:     out,
		running: true,
	}
	s.initializeCommands()
	return s
}

// Run reads commands until exit, end of input or ctx cancellation
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Lotto Shell")
	fmt.Fprintln(s.out, "===========")
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'as <address>' to pick an identity")

	scanner := bufio.NewScanner(s.in)
	for s.running {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if s.caller != nil {
			fmt.Fprintf(s.out, "\nlotto [%s]> ", shortAddress(*s.caller))
		} else {
			fmt.Fprint(s.out, "\nlotto> ")
		}

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		s.history = append(s.history, input)

		parts := strings.Fields(input)
		cmdName, args := parts[0], parts[1:]

		switch cmdName {
		case "exit", "quit":
			s.running = false
			fmt.Fprintln(s.out, "Bye.")
			continue
		case "history":
			for i, line := range s.history {
				fmt.Fprintf(s.out, "%4d  %s\n", i+1, line)
			}
			continue
		}

		cmd, exists := s.commands[cmdName]
		if !exists {
			s.printError(fmt.Errorf("unknown command: %s. Type 'help' for available commands", cmdName))
			continue
		}

		if err := cmd.Handler(ctx, args); err != nil {
			s.printError(err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// printError shows an error, prefixed with its domain code when it has one
func (s *Shell) printError(err error) {
	if code := entities.CodeOf(err); code != "" {
		fmt.Fprintf(s.out, "error [%s]: %s\n", code, err.Error())
		return
	}
	fmt.Fprintf(s.out, "error: %s\n", err.Error())
}

func (s *Shell) printSuccess(format string, args ...any) {
	fmt.Fprintf(s.out, "ok: "+format+"\n", args...)
}

// requireCaller returns the current identity or an error asking for one
func (s *Shell) requireCaller() (common.Address, error) {
	if s.caller == nil {
		return common.Address{}, fmt.Errorf("no identity selected, run 'as <address>' first")
	}
	return *s.caller, nil
}

// logAction records state-changing commands for audit
func (s *Shell) logAction(action string, fields log.Fields) {
	entry := log.WithField("action", action).WithField("source", "shell")
	if s.caller != nil {
		entry = entry.WithField("caller", s.caller.Hex())
	}
	entry.WithFields(fields).Info("Shell action executed")
}
