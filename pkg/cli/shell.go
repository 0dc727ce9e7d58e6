package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
)

// Exec parses and runs a single shell line. Blank lines and comments are no-ops.
func (s *Session) Exec(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return nil
	}

	args = escapeNegatives(args)

	var commands Commands
	parser, err := kong.New(&commands,
		kong.Name("multibit"),
		kong.Description("Multibit Trie IP Lookup"),
		kong.NoDefaultHelp(),
		kong.Writers(s.Out, s.Out),
		kong.Exit(func(int) {}),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return errors.Wrap(err, "invalid command grammar")
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return errors.Wrap(err, "type 'help' for available commands")
	}

	return ctx.Run(s)
}

// escapeNegatives puts "--" in front of the first negative number that is not
// a flag value, kong would read it as a short flag otherwise.
func escapeNegatives(args []string) []string {
	for i := 1; i < len(args); i++ {
		if args[i] == "--" {
			return args
		}
		if _, err := strconv.Atoi(args[i]); err != nil || !strings.HasPrefix(args[i], "-") {
			continue
		}
		if strings.HasPrefix(args[i-1], "-") {
			continue
		}

		escaped := append([]string{}, args[:i]...)
		escaped = append(escaped, "--")
		return append(escaped, args[i:]...)
	}
	return args
}

// Shell reads commands from in until it is exhausted or quit is entered.
// A failing command is reported and the shell carries on.
func (s *Session) Shell(in io.Reader, prompt bool) error {
	if prompt {
		fmt.Fprintln(s.Out, "Multibit Trie IP Lookup - CLI")
		fmt.Fprintln(s.Out, "Type 'help' for available commands")
	}

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(s.Out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		err := s.Exec(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.Out, "Error: %v\n", err)
		}
	}

	return errors.Wrap(scanner.Err(), "failed to read commands")
}
