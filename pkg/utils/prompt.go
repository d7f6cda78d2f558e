package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

// ReadPassword asks the operator for the share password. On a terminal the
// input is read without echo; otherwise one line is read from stdin so the
// tool stays scriptable.
func ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm prints prompt and reads a yes/no answer from r. Only "y" and
// "yes" (any case) count as approval.
func Confirm(r io.Reader, prompt string) (bool, error) {
	fmt.Print(prompt)
	var response string
	if _, err := fmt.Fscanln(r, &response); err != nil {
		return false, err
	}
	return slices.Contains([]string{"y", "yes"}, strings.ToLower(response)), nil
}
