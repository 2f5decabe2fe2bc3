package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/fsnav/fsnav/internal/util/sanitize"
)

// stdinReader is shared by every prompt so buffered input is not lost
// between them.
var stdinReader = bufio.NewReader(os.Stdin)

// promptLine prints prompt and reads one sanitized line.
func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	input, err := stdinReader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return sanitize.Line(input), nil
}

// promptDefault reads a line and returns def when it is empty.
func promptDefault(prompt, def string) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", prompt, def)
	} else {
		prompt += ": "
	}
	v, err := promptLine(prompt)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// promptInt reads an integer, re-asking on invalid input.
func promptInt(prompt string, def int) (int, error) {
	for {
		v, err := promptDefault(prompt, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintln(os.Stderr, "  Please enter a non-negative number.")
	}
}

// promptConfirm asks a yes/no question. Empty input means no.
func promptConfirm(prompt string) (bool, error) {
	v, err := promptLine(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes", nil
}

// promptPassword reads a secret without echo when stdin is a terminal.
// Piped input is read as a plain line.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(prompt)
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(pw)), nil
}
