package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from in and writes labels to out
type Prompter struct {
	in   *bufio.Reader
	out  io.Writer
	inFd int // terminal fd for hidden input, -1 when in is not a terminal
}

// New returns a prompter over arbitrary streams. Passwords are read as plain
// lines.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, inFd: -1}
}

var std = &Prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout, inFd: int(os.Stdin.Fd())}

// Default returns the prompter bound to stdin and stdout
func Default() *Prompter {
	return std
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// String prompts for a line of input
func (p *Prompter) String(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// StringDefault prompts for a line, returning def when the answer is empty
func (p *Prompter) StringDefault(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s[%s] ", label, def)
	}
	s, err := p.String(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Password prompts for hidden input when reading from a terminal
func (p *Prompter) Password(label string) (string, error) {
	fmt.Fprint(p.out, label)

	if p.inFd >= 0 && term.IsTerminal(p.inFd) {
		bytepw, err := term.ReadPassword(p.inFd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(bytepw), nil
	}

	return p.readLine()
}

// Confirm prompts for yes/no confirmation
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprint(p.out, label+" (y/n) ")
	line, err := p.readLine()
	if err != nil {
		return false, err
	}

	response := strings.TrimSpace(strings.ToLower(line))
	return response == "y" || response == "yes", nil
}

// Int prompts for a whole number
func (p *Prompter) Int(label string) (int, error) {
	s, err := p.String(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}

// Select prompts user to select from options and returns the index
func (p *Prompter) Select(label string, options []string) (int, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, opt)
	}

	selection, err := p.Int("Select option: ")
	if err != nil {
		return -1, err
	}

	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}

	return selection - 1, nil
}

// Multiline reads lines until an empty one or maxLines
func (p *Prompter) Multiline(label string, maxLines int) (string, error) {
	fmt.Fprintf(p.out, "%s (empty line to finish):\n", label)

	var lines []string
	for i := 0; i < maxLines; i++ {
		line, err := p.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}
