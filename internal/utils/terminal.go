package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// ErrInputClosed is returned when the user closes the terminal input
// (Ctrl-D) instead of answering a prompt.
var ErrInputClosed = errors.New("input closed")

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}

// ReadSecretFromTTY prompts for a secret on /dev/tty (or CON on Windows)
// without echoing it. Stdin stays free for piped input.
func ReadSecretFromTTY(prompt string) ([]byte, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for secret input: %w", ttyPath(), err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath())
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	return secret, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTTYAvailable returns true if /dev/tty (or CON on Windows) is available for reading.
func IsTTYAvailable() bool {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return false
	}
	defer tty.Close()

	return term.IsTerminal(int(tty.Fd()))
}

// WriteToTTY writes content directly to the terminal (bypassing stdout/stderr).
func WriteToTTY(content string) error {
	tty, err := os.OpenFile(ttyPath(), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open %s for writing: %w", ttyPath(), err)
	}
	defer tty.Close()

	if _, err := tty.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to TTY: %w", err)
	}
	return nil
}

// WaitForEnterFromTTY waits for the user to press Enter on the TTY. It
// returns ErrInputClosed on Ctrl-D and ctx.Err() when ctx ends first.
func WaitForEnterFromTTY(ctx context.Context) error {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return fmt.Errorf("cannot open %s for reading: %w", ttyPath(), err)
	}
	defer tty.Close()

	return WaitForEnter(ctx, tty)
}

// WaitForEnter reads r until a newline. It returns ErrInputClosed at end
// of input and ctx.Err() when ctx ends first.
func WaitForEnter(ctx context.Context, r io.Reader) error {
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			_, err := r.Read(buf)
			if errors.Is(err, io.EOF) {
				done <- ErrInputClosed
				return
			}
			if err != nil {
				done <- fmt.Errorf("failed to read from TTY: %w", err)
				return
			}
			if buf[0] == '\n' || buf[0] == '\r' {
				done <- nil
				return
			}
		}
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
