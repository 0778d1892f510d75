// Package tui implements the interactive input source: a preset menu
// plus a custom flow that prompts for each field with the same
// validation rules the flag path uses.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"vmselector/internal/config"
	"vmselector/internal/domain"
	"vmselector/internal/validate"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels the interactive flow.
var ErrAborted = errors.New("VM selection aborted by user")

// customEntry is the menu value for the fully-prompted flow.
const customEntry = "custom"

// Run presents the configuration menu and returns a raw input record for
// the shared validator. It never returns a Configuration itself; the
// single validation step downstream applies to both input sources.
func Run(limits config.Limits) (*validate.Raw, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	presets := config.Presets()
	presetOpts, presetLabels := buildPresetOptions(presets)

	var selection string
	selectField := huh.NewSelect[string]().
		Title("VM configuration").
		Description("Pick a preset or choose custom sizing.").
		Options(presetOpts...).
		Value(&selection).
		Height(selectHeight(len(presetOpts), 8))

	if err := runForm(accessible, huh.NewGroup(selectField)); err != nil {
		return nil, err
	}

	raw := validate.Raw{}
	if preset, ok := config.PresetByName(selection); ok {
		raw.RAM = fmt.Sprintf("%d", preset.RAMGB)
		raw.CPU = fmt.Sprintf("%d", preset.CPUCores)
		raw.Storage = fmt.Sprintf("%d", preset.StorageGB)
	}

	// --- Form 2: name, custom sizing, shares, overlay ---

	var groups []*huh.Group

	nameField := huh.NewInput().
		Title("VM name").
		Placeholder(domain.DefaultName).
		Value(&raw.Name).
		Validate(func(value string) error {
			if strings.TrimSpace(value) == "" {
				return nil // omitted, defaults later
			}
			return validate.Name(strings.TrimSpace(value))
		})
	groups = append(groups, huh.NewGroup(nameField))

	if selection == customEntry {
		groups = append(groups, huh.NewGroup(
			sizeField("RAM (GB)", &raw.RAM, "RAM", limits.MaxRAMGB),
			sizeField("CPU cores", &raw.CPU, "CPU cores", limits.MaxCPUCores),
			sizeField("Storage (GB)", &raw.Storage, "storage", limits.MaxStorageGB),
		))
	}

	var rwShares, roShares string
	groups = append(groups, huh.NewGroup(
		shareField("Read-write shares", &rwShares),
		shareField("Read-only shares", &roShares),
		huh.NewConfirm().
			Title("Use overlay filesystem?").
			Description("Guest writes are discarded on shutdown instead of persisting to the disk image.").
			Value(&raw.Overlay),
	))

	confirm := false
	summaryNote := huh.NewNote().
		Title("Summary").
		DescriptionFunc(func() string {
			view := raw
			view.Name = strings.TrimSpace(view.Name)
			view.RWShares = parseShareList(rwShares)
			view.ROShares = parseShareList(roShares)
			return buildSummary(view, presetLabels[selection])
		}, &raw)

	confirmField := huh.NewConfirm().
		Title("Build this VM?").
		Value(&confirm)
	groups = append(groups, huh.NewGroup(summaryNote, confirmField))

	if err := runForm(accessible, groups...); err != nil {
		return nil, err
	}
	if !confirm {
		return nil, ErrAborted
	}

	raw.Name = strings.TrimSpace(raw.Name)
	raw.RWShares = parseShareList(rwShares)
	raw.ROShares = parseShareList(roShares)

	return &raw, nil
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func sizeField(title string, value *string, field string, ceiling int) *huh.Input {
	return huh.NewInput().
		Title(title).
		Value(value).
		Validate(func(v string) error {
			_, err := validate.PositiveInt(field, strings.TrimSpace(v), ceiling)
			return err
		})
}

func shareField(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Description("Host directories, comma-separated. Leave empty for none.").
		Value(value).
		Validate(func(v string) error {
			for _, share := range parseShareList(v) {
				if err := validate.SharePath(share); err != nil {
					return err
				}
			}
			return nil
		})
}

// --- Option builders ---

func buildPresetOptions(presets []config.Preset) ([]huh.Option[string], map[string]string) {
	options := make([]huh.Option[string], 0, len(presets)+1)
	labels := make(map[string]string, len(presets)+1)

	for _, p := range presets {
		label := presetLabel(p)
		options = append(options, huh.NewOption(label, p.Name))
		labels[p.Name] = label
	}

	customLabel := "custom - choose your own sizing"
	options = append(options, huh.NewOption(customLabel, customEntry))
	labels[customEntry] = customLabel

	return options, labels
}

func presetLabel(p config.Preset) string {
	return fmt.Sprintf("%s - %dGB RAM, %d CPU cores, %dGB storage", p.Name, p.RAMGB, p.CPUCores, p.StorageGB)
}

// parseShareList splits a comma-separated path list, dropping empty
// entries and surrounding whitespace while preserving order.
func parseShareList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	shares := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			shares = append(shares, trimmed)
		}
	}
	if len(shares) == 0 {
		return nil
	}
	return shares
}

// --- Summary ---

func buildSummary(raw validate.Raw, presetLabel string) string {
	var b strings.Builder

	name := raw.Name
	if name == "" {
		name = domain.DefaultName + " (default)"
	}
	fmt.Fprintf(&b, "Name: %s\n", name)
	if presetLabel != "" {
		fmt.Fprintf(&b, "Sizing: %s\n", presetLabel)
	}
	fmt.Fprintf(&b, "RAM: %sGB, CPU: %s cores, storage: %sGB\n", raw.RAM, raw.CPU, raw.Storage)

	overlay := "disabled"
	if raw.Overlay {
		overlay = "enabled"
	}
	fmt.Fprintf(&b, "Overlay filesystem: %s\n", overlay)

	if len(raw.RWShares) > 0 {
		fmt.Fprintf(&b, "RW shares: %s\n", strings.Join(raw.RWShares, ", "))
	}
	if len(raw.ROShares) > 0 {
		fmt.Fprintf(&b, "RO shares: %s\n", strings.Join(raw.ROShares, ", "))
	}

	return strings.TrimSpace(b.String())
}

func selectHeight(optionCount, max int) int {
	if optionCount < max {
		return optionCount
	}
	return max
}
