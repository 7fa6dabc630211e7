// Package input turns operator input (prompts, JSON files, RDD) into set_config requests.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/setconfig"
)

// InvalidInputError is returned for values that cannot be parsed. Callers decide
// whether to prompt again; nothing is ever substituted for a bad value.
type InvalidInputError struct {
	Prompt string
	Value  string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid input for %q: %q", e.Prompt, e.Value)
	}
	return fmt.Sprintf("invalid input for %q: %q: %v", e.Prompt, e.Value, e.Err)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// Provider asks the operator for values.
type Provider interface {
	String(prompt string) (string, error)
	Uint64(prompt string) (uint64, error)
	Confirm(prompt string) (bool, error)
}

var _ Provider = (*ReaderProvider)(nil)

// ReaderProvider prompts on w and reads one line per answer from r.
type ReaderProvider struct {
	r *bufio.Reader
	w io.Writer
}

func NewReaderProvider(r io.Reader, w io.Writer) *ReaderProvider {
	return &ReaderProvider{r: bufio.NewReader(r), w: w}
}

func (p *ReaderProvider) String(prompt string) (string, error) {
	if _, err := fmt.Fprintf(p.w, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrapf(err, "failed to read %q", prompt)
	}
	return strings.TrimSpace(line), nil
}

func (p *ReaderProvider) Uint64(prompt string) (uint64, error) {
	s, err := p.String(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &InvalidInputError{Prompt: prompt, Value: s, Err: err}
	}
	return v, nil
}

func (p *ReaderProvider) Confirm(prompt string) (bool, error) {
	s, err := p.String(prompt + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	case "", "n", "no":
		return false, nil
	}
	return false, &InvalidInputError{Prompt: prompt, Value: s}
}

// Ask calls ask until it returns something other than an InvalidInputError, at most
// attempts times. The last error is returned when every attempt was invalid.
func Ask[T any](attempts int, ask func() (T, error)) (T, error) {
	var v T
	var err error
	for i := 0; i < attempts; i++ {
		v, err = ask()
		var invalid *InvalidInputError
		if !errors.As(err, &invalid) {
			return v, err
		}
	}
	return v, err
}

// ConfirmReviewer shows the review on w and asks the operator to continue. Declining
// vetoes the update with setconfig.ErrReviewRejected.
func ConfirmReviewer(p Provider, w io.Writer, attempts int) setconfig.Reviewer {
	return setconfig.ReviewerFunc(func(_ context.Context, r setconfig.Review) error {
		if r.FirstConfiguration {
			fmt.Fprintf(w, "No previous config found for %s. New config:\n", r.Contract)
		} else if r.PreviousErr != nil {
			fmt.Fprintf(w, "Previous config of %s could not be decoded (%v). New config:\n", r.Contract, r.PreviousErr)
		}
		fmt.Fprintln(w, r.Rendered)

		ok, err := Ask(attempts, func() (bool, error) {
			return p.Confirm("Continue with set_config?")
		})
		if err != nil {
			return err
		}
		if !ok {
			return setconfig.ErrReviewRejected
		}
		return nil
	})
}
