package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoInput is returned when the input ends before an answer is given.
var ErrNoInput = errors.New("no input provided")

// errInvalidChoice is returned for seed selections outside the listed range.
var errInvalidChoice = errors.New("invalid selection")

// prompter asks the questions of an interactive crawl.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer line.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", ErrNoInput
	case err != nil && !errors.Is(err, io.EOF):
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// chooseSeed lists seeds numbered from 1, with 0 for entering a new URL.
// With no seeds it asks for a URL directly.
func (p *prompter) chooseSeed(seeds []string) (string, error) {
	if len(seeds) == 0 {
		return p.askURL()
	}

	fmt.Fprintln(p.out, "Available URLs from config:")
	for i, s := range seeds {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, s)
	}
	fmt.Fprintln(p.out, "0. Enter a new URL")

	answer, err := p.ask("Select a URL by number (0 to enter new URL): ")
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 0 || n > len(seeds) {
		return "", fmt.Errorf("%w: %q (expected 0-%d)", errInvalidChoice, answer, len(seeds))
	}
	if n == 0 {
		return p.askURL()
	}
	return seeds[n-1], nil
}

func (p *prompter) askURL() (string, error) {
	return p.ask("Enter the URL to start crawling: ")
}

// askDepth reads a non-negative depth. An empty answer keeps def.
func (p *prompter) askDepth(def int) (int, error) {
	answer, err := p.ask(fmt.Sprintf("Enter the maximum depth (default %d): ", def))
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return def, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid depth %q: must be a non-negative integer", answer)
	}
	return n, nil
}
