package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Choice is the operator's decision after each processed page
type Choice int

const (
	// ChoiceNext advances to the next page
	ChoiceNext Choice = iota
	// ChoiceRetry reprocesses the current page
	ChoiceRetry
	// ChoiceStop ends the session
	ChoiceStop
)

// Prompter reads operator decisions from a line-oriented console.
// The session is operator-paced: it blocks here for manual login
// confirmation and for the per-page next/retry/stop decision.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter on stdin/stdout
func NewPrompter() *Prompter {
	return &Prompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

// NewPrompterWithStreams creates a Prompter on the given streams (tests)
func NewPrompterWithStreams(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm blocks until the operator presses enter
func (p *Prompter) Confirm(msg string) {
	fmt.Fprintf(p.out, "%s ", Yellow(msg))
	_, _ = p.in.ReadString('\n')
}

// ChoosePageAction asks the operator what to do after a processed page.
// Any input other than the three known choices is treated as stop.
func (p *Prompter) ChoosePageAction() Choice {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Options:")
	fmt.Fprintf(p.out, "  [%s] Go to next page\n", Green("y"))
	fmt.Fprintf(p.out, "  [%s] Stop downloading\n", Red("n"))
	fmt.Fprintf(p.out, "  [%s] Retry current page\n", Yellow("r"))
	fmt.Fprint(p.out, "Choose option (y/n/r): ")

	line, err := p.in.ReadString('\n')
	if err != nil {
		return ChoiceStop
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y":
		return ChoiceNext
	case "r":
		return ChoiceRetry
	case "n":
		return ChoiceStop
	default:
		fmt.Fprintln(p.out, Yellow("Unrecognized choice, stopping"))
		return ChoiceStop
	}
}
