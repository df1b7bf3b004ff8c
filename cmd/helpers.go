package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	kerrors "github.com/prfvault/prfvault/internal/errors"
	"github.com/prfvault/prfvault/internal/ui"
	"github.com/prfvault/prfvault/internal/workflows"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. The spinner draws on stderr so stdout carries
// only command output.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup
// function ensures one before printing the final message to stdout.
func startSpinner(message string) (*spinner.Spinner, func()) {
	return startSpinnerTo(message, os.Stdout)
}

// startSpinnerTo is startSpinner with the final message written to out.
func startSpinnerTo(message string, out io.Writer) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	// Ceremonies prompting on the terminal pause the spinner.
	previous := workflows.Presence
	workflows.Presence = func(ctx context.Context, prompt string) error {
		if s.Active() {
			s.Stop()
			defer s.Start()
		}
		return previous(ctx, prompt)
	}

	cleanup := func() {
		workflows.Presence = previous

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(out, finalMsg)
		}
	}

	return s, cleanup
}

// formatError renders err as a ✗ line followed by a → hint when one
// applies. Crypto failures share one message.
func formatError(err error) string {
	msg := ui.ErrorLine("%s", kerrors.UserMessage(err))
	if hint := errorHint(err); hint != "" {
		msg += "\n" + ui.HintLine("%s", hint)
	}
	return msg
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrVaultNotInitialized):
		return "Run " + ui.Code.Sprint("prfvault vault init") + " first"
	case errors.Is(err, kerrors.ErrVaultAlreadyInitialized):
		return "Use " + ui.Flag.Sprint("--force") + " to replace it"
	case errors.Is(err, kerrors.ErrNoKeypairs):
		return "Run " + ui.Code.Sprint("prfvault key register") + " first"
	case errors.Is(err, kerrors.ErrNoEligibleRecipient):
		return "Run " + ui.Code.Sprint("prfvault vault reencrypt") + " with a key that can decrypt it to grant access"
	case errors.Is(err, kerrors.ErrNotRegistered):
		return "Use a security key listed by " + ui.Code.Sprint("prfvault key list")
	case errors.Is(err, kerrors.ErrAlreadyRegistered):
		return "This security key is already registered, see " + ui.Code.Sprint("prfvault key list")
	case errors.Is(err, kerrors.ErrCredentialNotFound), errors.Is(err, kerrors.ErrAmbiguousCredential):
		return "Run " + ui.Code.Sprint("prfvault key list") + " to see nicknames and ids"
	case errors.Is(err, kerrors.ErrNameCollision):
		return "Use " + ui.Flag.Sprint("--replace") + " to overwrite it"
	case errors.Is(err, kerrors.ErrEntryNotFound):
		return "Run " + ui.Code.Sprint("prfvault vault list") + " to see entry names"
	case errors.Is(err, kerrors.ErrUnsupported):
		return "The security key must support the WebAuthn PRF extension"
	}
	return ""
}

// isExpectedError reports whether err is a known failure the CLI reports
// with a message and a zero exit status.
func isExpectedError(err error) bool {
	return kerrors.IsAuthenticator(err) ||
		kerrors.IsCrypto(err) ||
		kerrors.IsData(err) ||
		errors.Is(err, kerrors.ErrSerialization) ||
		errors.Is(err, kerrors.ErrVaultNotInitialized) ||
		errors.Is(err, kerrors.ErrVaultAlreadyInitialized)
}

// handleWorkflowError sets the spinner's final message for err and returns
// the error cobra should see. Cancellation is silent.
func handleWorkflowError(s *spinner.Spinner, err error) error {
	if kerrors.IsCancelled(err) {
		Logger.Infof("Ceremony cancelled: %v", err)
		s.FinalMSG = ""
		return nil
	}
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	if isExpectedError(err) {
		return nil
	}
	return err
}

// errReported wraps an error whose message is already on the terminal so
// main exits non-zero without printing it again.
type errReported struct {
	err error
}

func (e *errReported) Error() string { return e.err.Error() }

func (e *errReported) Unwrap() error { return e.err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var reported *errReported
	return errors.As(err, &reported)
}

// handleWorkflowFailure is handleWorkflowError for commands whose stdout is
// consumed by other programs: every failure, cancellation included, is
// returned as a reported error so the exit status is non-zero.
func handleWorkflowFailure(s *spinner.Spinner, err error) error {
	_ = handleWorkflowError(s, err)
	return &errReported{err: err}
}

// confirm asks a yes/no question on stdin with the spinner paused.
func confirm(s *spinner.Spinner, question string) bool {
	if s.Active() {
		s.Stop()
		defer s.Start()
	}

	fmt.Print(question + " [y/N]: ")
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		Logger.Errorf("Failed to read response: %v", err)
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
