// Package validate turns raw operator input into a domain.Configuration.
//
// Both input sources (command-line flags and the interactive menu)
// normalize into the same Raw record before validation, so every rule
// lives here exactly once.
package validate

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"vmselector/internal/config"
	"vmselector/internal/domain"
)

// validNameChars matches the characters allowed in a VM name. The name
// becomes part of file names on the host, so nothing outside this class
// is accepted.
var validNameChars = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Raw is the un-validated input record produced by either input source.
// Sizing fields stay strings until validation so a non-numeric flag value
// is reported as a validation failure, not a flag-parsing crash.
type Raw struct {
	Name     string
	RAM      string
	CPU      string
	Storage  string
	Overlay  bool
	RWShares []string
	ROShares []string
}

// Validate checks every field of raw independently and returns either a
// frozen Configuration or the joined set of per-field validation errors.
// Invalid values are never clamped or defaulted; only a wholly absent
// name falls back to domain.DefaultName.
func Validate(raw Raw, limits config.Limits) (domain.Configuration, error) {
	var errs []error

	ram, err := PositiveInt("RAM", raw.RAM, limits.MaxRAMGB)
	if err != nil {
		errs = append(errs, err)
	}
	cpu, err := PositiveInt("CPU cores", raw.CPU, limits.MaxCPUCores)
	if err != nil {
		errs = append(errs, err)
	}
	storage, err := PositiveInt("storage", raw.Storage, limits.MaxStorageGB)
	if err != nil {
		errs = append(errs, err)
	}

	name := raw.Name
	if name == "" {
		name = domain.DefaultName
	} else if err := Name(name); err != nil {
		errs = append(errs, err)
	}

	for _, share := range raw.RWShares {
		if err := SharePath(share); err != nil {
			errs = append(errs, err)
		}
	}
	for _, share := range raw.ROShares {
		if err := SharePath(share); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return domain.Configuration{}, errors.Join(errs...)
	}

	return domain.Configuration{
		Name:      name,
		RAMGB:     ram,
		CPUCores:  cpu,
		StorageGB: storage,
		Overlay:   raw.Overlay,
		RWShares:  append([]string(nil), raw.RWShares...),
		ROShares:  append([]string(nil), raw.ROShares...),
	}, nil
}

// PositiveInt parses a sizing field and checks it against its ceiling.
func PositiveInt(field, value string, ceiling int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, &domain.ValidationError{
			Field:  field,
			Value:  value,
			Kind:   domain.NotPositiveInteger,
			Reason: "must be a positive integer",
		}
	}
	if n > ceiling {
		return 0, &domain.ValidationError{
			Field:  field,
			Value:  value,
			Kind:   domain.ExceedsSaneLimit,
			Reason: fmt.Sprintf("seems excessive (maximum is %d)", ceiling),
		}
	}
	return n, nil
}

// Name checks that a VM name contains only characters safe for use as a
// label and as a file name component.
func Name(name string) error {
	if !validNameChars.MatchString(name) {
		return &domain.ValidationError{
			Field:  "VM name",
			Value:  name,
			Kind:   domain.InvalidNameCharacters,
			Reason: "must contain only letters, numbers, hyphens, and underscores",
		}
	}
	return nil
}

// SharePath checks that a shared host directory exists. Existence is
// checked once here; a path removed after validation surfaces later as a
// build failure, not a validation failure.
func SharePath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &domain.ValidationError{
			Field:  "shared folder",
			Value:  path,
			Kind:   domain.ShareNotAccessible,
			Reason: "does not exist or is not accessible",
		}
	}
	return nil
}
