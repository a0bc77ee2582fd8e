package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type prompter struct {
	raw io.Reader
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{raw: in, in: bufio.NewReader(in), out: out}
}

func (p *prompter) line(label string) (string, error) {
	s, err := p.readLine(label)
	return strings.TrimSpace(s), err
}

// password hides input when reading from a terminal and falls back to a
// plain line otherwise, so the command can be scripted.
func (p *prompter) password(label string) (string, error) {
	if f, ok := p.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return p.readLine(label)
}

func (p *prompter) readLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if s == "" {
			return "", errors.New("unexpected end of input")
		}
	}
	return strings.TrimRight(s, "\r\n"), nil
}
