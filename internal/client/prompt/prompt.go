// Package prompt reads the shell's forms line by line.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Prompter asks questions on out and reads the answers from in.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
	// Now is the clock used for date defaults.
	Now func() time.Time
}

// New returns a Prompter over the given streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, Now: time.Now}
}

// Scanner exposes the underlying line scanner so the shell loop and the
// forms share one buffer.
func (p *Prompter) Scanner() *bufio.Scanner { return p.in }

// Line prints label and returns the trimmed answer, or "" at end of input.
func (p *Prompter) Line(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

// LineDefault is Line with a default used for an empty answer.
func (p *Prompter) LineDefault(label, def string) string {
	if def == "" {
		return p.Line(label)
	}
	if v := p.Line(fmt.Sprintf("%s [%s]", label, def)); v != "" {
		return v
	}
	return def
}

// Int reads an integer, returning def for an empty answer.
func (p *Prompter) Int(label string, def int) (int, error) {
	v := p.LineDefault(label, strconv.Itoa(def))
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", strings.ToLower(label), v)
	}
	return n, nil
}

// Bool reads a yes/no answer, returning def for an empty answer.
func (p *Prompter) Bool(label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	switch strings.ToLower(p.Line(fmt.Sprintf("%s [%s]", label, hint))) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return def
}

// Confirm asks a yes/no question that defaults to no.
func (p *Prompter) Confirm(question string) bool {
	return p.Bool(question, false)
}

// Option is one entry of a choice list.
type Option struct {
	ID    string
	Label string
}

// Choose lists options and reads one by number or ID. An empty answer keeps
// current; "-" clears the choice.
func (p *Prompter) Choose(label string, options []Option, current string) (string, error) {
	for i, o := range options {
		marker := " "
		if o.ID == current {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s%2d) %s\n", marker, i+1, o.Label)
	}
	v := p.Line(fmt.Sprintf("%s (number or id, '-' for none)", label))
	switch v {
	case "":
		return current, nil
	case "-":
		return "", nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(options) {
		return options[n-1].ID, nil
	}
	for _, o := range options {
		if o.ID == v {
			return o.ID, nil
		}
	}
	return "", fmt.Errorf("%s: unknown choice %q", strings.ToLower(label), v)
}
