// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when a secret prompt has no terminal to read from.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// ReadSecret prompts on stderr and reads a line from the terminal without
// echo. The prompt and the blank line left behind are cleared afterwards.
func ReadSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNotTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	ClearPreviousLines(len(prompt))
	return strings.TrimSpace(string(b)), nil
}

// ReadLine reads one line from r, for piped input such as
// `echo $DSN | sqlbridge connect`.
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no input")
	}
	return line, nil
}
