// Package prompt asks the user which index to screen and which filters to
// apply, over any line-oriented reader and writer.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"StockScreener/internal/model"
)

// ErrNoInput is returned when the input ends before a question is answered.
var ErrNoInput = errors.New("no more input")

// Prompter asks questions on out and reads answers from in. Invalid answers
// are reported and the question is asked again.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// AskIndex offers the index ids in sorted order and returns the chosen one.
// The answer may be the list number or the id itself.
func (p *Prompter) AskIndex(ids []string) (string, error) {
	if len(ids) == 0 {
		return "", errors.New("no indices to choose from")
	}
	choices := slices.Sorted(slices.Values(ids))
	n, err := p.choose("Which index would you like to screen?", choices)
	if err != nil {
		return "", err
	}
	return choices[n], nil
}

// AskFilters collects filters until the user declines to add another.
func (p *Prompter) AskFilters() ([]model.FilterSpec, error) {
	var specs []model.FilterSpec
	for {
		spec, err := p.askFilter()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)

		more, err := p.confirm("Would you like to add more screening criteria?")
		if err != nil {
			return nil, err
		}
		if !more {
			return specs, nil
		}
	}
}

func (p *Prompter) askFilter() (model.FilterSpec, error) {
	var spec model.FilterSpec

	labels := make([]string, len(model.Strategies))
	for i, s := range model.Strategies {
		labels[i] = s.Label
	}
	n, err := p.choose("Which type of screening would you like to configure?", labels)
	if err != nil {
		return spec, err
	}
	spec.Strategy = model.Strategies[n].Kind

	labels = make([]string, len(model.Attributes))
	for i, a := range model.Attributes {
		labels[i] = a.Label()
	}
	if n, err = p.choose("Which part of the fundamentals should it apply to?", labels); err != nil {
		return spec, err
	}
	spec.Attribute = model.Attributes[n]

	if spec.Threshold, err = p.number("Minimum yearly change in percent", 0); err != nil {
		return spec, err
	}

	if spec.Strategy.Windowed() {
		for {
			years, err := p.number("For how many years should it hold", 2)
			if err != nil {
				return spec, err
			}
			if years >= 1 && years == float64(int(years)) {
				spec.Window = int(years)
				break
			}
			fmt.Fprintln(p.out, "Please enter a whole number of years, at least 1.")
		}
	}
	return spec, nil
}

// choose prints a numbered list and returns the index of the chosen entry.
func (p *Prompter) choose(question string, choices []string) (int, error) {
	for {
		fmt.Fprintln(p.out, question)
		for i, c := range choices {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
		}
		answer, err := p.ask("> ")
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		for i, c := range choices {
			if strings.EqualFold(answer, c) {
				return i, nil
			}
		}
		fmt.Fprintf(p.out, "Please pick a number between 1 and %d.\n", len(choices))
	}
}

func (p *Prompter) number(question string, def float64) (float64, error) {
	for {
		answer, err := p.ask(fmt.Sprintf("%s? (default: %g) ", question, def))
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(answer, "%"), 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(p.out, "Please enter a number.")
	}
}

func (p *Prompter) confirm(question string) (bool, error) {
	for {
		answer, err := p.ask(question + " (y/N) ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "", "n", "no":
			return false, nil
		case "y", "yes":
			return true, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}
