package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errCancelled is returned when a confirmation is not answered with "yes".
var errCancelled = errors.New("cancelled")

func cancelled(what string) error { return fmt.Errorf("%s %w", what, errCancelled) }

// prompter asks yes/no questions on the terminal.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	force       bool
}

func newPrompter(in io.Reader, out io.Writer, force bool) *prompter {
	return &prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isTerminal(in),
		force:       force,
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm returns true when forced or when the answer is "yes". Without a
// terminal to ask on, the answer is no.
func (p *prompter) confirm(question string) bool {
	if p.force {
		return true
	}
	if !p.interactive {
		fmt.Fprintln(p.out, styleWarn.Render("Not running on a terminal, use --force to answer yes"))
		return false
	}
	if question != "" {
		fmt.Fprintln(p.out, question)
	}
	fmt.Fprint(p.out, "Type 'yes' to continue, or 'no' to cancel: ")
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
