// Package prompt asks the operator yes/no questions.
//
// An Asker is the raw "ask a question, get a line back" primitive; the host
// terminal, a fixed --yes/--no answer, or a test script can provide it.
// Confirmer turns the raw answer into a decision.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// DefaultAnswer is offered when the operator just presses enter.
const DefaultAnswer = "N"

var affirmative = map[string]bool{
	"y":   true,
	"yes": true,
}

var questionColor = color.New(color.FgYellow, color.Bold)

// Asker presents a question and returns the raw answer.
// An empty answer is replaced by defaultAnswer.
type Asker interface {
	Ask(question, defaultAnswer string) (string, error)
}

// ConsoleAsker reads answers line by line from a terminal or pipe.
type ConsoleAsker struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleAsker creates a ConsoleAsker reading from in and writing to out.
func NewConsoleAsker(in io.Reader, out io.Writer) *ConsoleAsker {
	return &ConsoleAsker{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask writes the question and blocks until one line is read.
func (a *ConsoleAsker) Ask(question, defaultAnswer string) (string, error) {
	if _, err := questionColor.Fprint(a.out, question); err != nil {
		return "", fmt.Errorf("failed to write question: %w", err)
	}

	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) {
		// Keep the answer on its own line when input ended without a newline.
		_, _ = fmt.Fprintln(a.out)
	}

	answer := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(answer) == "" {
		return defaultAnswer, nil
	}
	return answer, nil
}

// FixedAsker answers every question with the same value, for
// non-interactive runs.
type FixedAsker struct {
	Answer string
	Out    io.Writer
}

func (a *FixedAsker) Ask(question, defaultAnswer string) (string, error) {
	if a.Out != nil {
		_, _ = fmt.Fprintf(a.Out, "%s%s\n", question, a.Answer)
	}
	if a.Answer == "" {
		return defaultAnswer, nil
	}
	return a.Answer, nil
}

// Confirmer asks yes/no questions through an Asker.
type Confirmer struct {
	asker Asker
}

// NewConfirmer creates a new Confirmer.
func NewConfirmer(asker Asker) *Confirmer {
	return &Confirmer{asker: asker}
}

// Confirm returns true only for an affirmative answer. Everything else,
// including read failures, is a final "no".
func (c *Confirmer) Confirm(question string) bool {
	answer, err := c.asker.Ask(question, DefaultAnswer)
	if err != nil {
		return false
	}
	return IsAffirmative(answer)
}

// IsAffirmative reports whether input is "y" or "yes", ignoring case and
// surrounding whitespace.
func IsAffirmative(input string) bool {
	return affirmative[strings.ToLower(strings.TrimSpace(input))]
}
