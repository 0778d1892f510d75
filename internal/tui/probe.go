package tui

import (
	"context"
	"errors"
	"os"

	"vmselector/internal/builder"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ProbeBackend checks backend availability behind a spinner so the
// operator is not dropped into a long silent pause before the menu.
func ProbeBackend(backend *builder.CommandBackend) error {
	accessible := os.Getenv("ACCESSIBLE") != ""

	err := spinner.New().
		Title("Checking build backend...").
		Accessible(accessible).
		Output(os.Stderr).
		ActionWithErr(func(ctx context.Context) error {
			return backend.Probe(ctx)
		}).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return ErrAborted
		}
		return err
	}
	return nil
}
