package utils

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestWaitForEnter(t *testing.T) {
	if err := WaitForEnter(context.Background(), strings.NewReader("\n")); err != nil {
		t.Errorf("Expected nil on Enter, got %v", err)
	}
	if err := WaitForEnter(context.Background(), strings.NewReader("abc\r")); err != nil {
		t.Errorf("Expected nil on carriage return, got %v", err)
	}
	if err := WaitForEnter(context.Background(), strings.NewReader("no newline")); !errors.Is(err, ErrInputClosed) {
		t.Errorf("Expected ErrInputClosed, got %v", err)
	}
}

func TestWaitForEnterHonorsContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := WaitForEnter(ctx, r); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestIsValidNickname(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"yubikey", true},
		{"Work Key 5", true},
		{"backup_key-2.0", true},
		{"", false},
		{" leading", false},
		{"-dash", false},
		{"tab\tkey", false},
		{strings.Repeat("k", 65), false},
	}
	for _, tc := range tests {
		if got := IsValidNickname(tc.input); got != tc.valid {
			t.Errorf("IsValidNickname(%q) = %v, expected %v", tc.input, got, tc.valid)
		}
	}
}
