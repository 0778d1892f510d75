// Package cmd wires the two input sources into the validation, build,
// and script-generation pipeline.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"vmselector/internal/builder"
	"vmselector/internal/config"
	"vmselector/internal/domain"
	"vmselector/internal/logging"
	"vmselector/internal/script"
	"vmselector/internal/tui"
	"vmselector/internal/tui/styles"
	"vmselector/internal/validate"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// directModeFlags are the flags whose presence selects direct mode and
// suppresses the interactive menu.
var directModeFlags = []string{"ram", "cpu", "storage", "name", "share-rw", "share-ro", "overlay"}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vmselector",
		Short: "Build a VM from a declarative configuration and generate its startup script",
		Long: `vmselector describes a virtual machine (sizing, name, host-directory
shares, overlay mode), delegates the image build to the declarative
build backend, and writes a self-contained start-<name>.sh script that
reproduces the chosen configuration on every future launch.

Direct mode (any configuration flag given):
  vmselector --ram 8 --cpu 4 --storage 100 --name dev

Interactive mode (no flags, terminal attached):
  vmselector

A menu offers the small/medium/large presets plus fully custom sizing.
Set INTERACTIVE=false to suppress the menu in automated contexts.

Examples:
  # Larger VM with shares and a copy-on-write overlay
  vmselector --name complex-test \
    --ram 16 --cpu 8 --storage 200 \
    --overlay \
    --share-rw /tmp/a \
    --share-ro /tmp/b`,
		RunE:         runSelect,
		SilenceUsage: true,
	}

	// Sizing flags stay strings so a non-numeric value reaches the
	// validator and is reported as a field error, not a flag error.
	cmd.Flags().String("ram", "", "RAM in GB (positive integer)")
	cmd.Flags().String("cpu", "", "CPU core count (positive integer)")
	cmd.Flags().String("storage", "", "Storage in GB (positive integer)")
	cmd.Flags().String("name", "", `VM identifier (letters, numbers, hyphens, underscores; default "vm")`)
	cmd.Flags().StringArray("share-rw", nil, "Host directory mounted read-write (can be specified multiple times)")
	cmd.Flags().StringArray("share-ro", nil, "Host directory mounted read-only (can be specified multiple times)")
	cmd.Flags().Bool("overlay", false, "Use a copy-on-write overlay filesystem instead of a persistent disk image")

	cmd.Flags().String("backend", "", "Build backend command (overrides the configured default)")
	cmd.Flags().String("output-dir", ".", "Directory for the build result and the generated startup script")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	cmd.AddCommand(presetsCommand())

	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runSelect(cmd *cobra.Command, args []string) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logger := logging.New(logging.Opts{Name: "vmselector", LogLevel: logLevel})

	settings, err := config.Load()
	if err != nil {
		return err
	}

	backendCommand, _ := cmd.Flags().GetString("backend")
	if backendCommand == "" {
		backendCommand = settings.BackendCommand
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")

	stdoutIsTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	backend := &builder.CommandBackend{
		Command:   backendCommand,
		Dir:       outputDir,
		Output:    cmd.OutOrStdout(),
		StripANSI: !stdoutIsTerminal,
		Logger:    logger,
	}

	raw, err := collectInput(cmd, settings.Limits, backend, stdoutIsTerminal)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "VM selection cancelled.")
			return nil
		}
		return err
	}

	cfg, err := validate.Validate(*raw, settings.Limits)
	if err != nil {
		return err
	}

	printBuildPlan(cmd, cfg)

	// The backend subprocess must die with us on external termination;
	// no script exists yet at that point, so nothing misleading is left
	// behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := &builder.Orchestrator{Backend: backend, Logger: logger}
	artifact, err := orchestrator.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Creating startup script: %s\n", cfg.ScriptFileName())

	generator := &script.Generator{OutputDir: outputDir, Logger: logger}
	path, err := generator.Write(cfg, artifact)
	if err != nil {
		return err
	}

	success := fmt.Sprintf("VM %q is ready. Launch it with ./%s", cfg.Name, cfg.ScriptFileName())
	if stdoutIsTerminal {
		success = styles.SuccessText.Render(success)
	}
	fmt.Fprintln(cmd.OutOrStdout(), success)
	logger.Debug("invocation complete", "script", path, "artifact", artifact)

	return nil
}

// collectInput normalizes both input sources into one raw record.
func collectInput(cmd *cobra.Command, limits config.Limits, backend *builder.CommandBackend, stdoutIsTerminal bool) (*validate.Raw, error) {
	if directMode(cmd) {
		return rawFromFlags(cmd), nil
	}

	if !interactiveAllowed() || !stdoutIsTerminal {
		return nil, fmt.Errorf("no configuration flags given and interactive mode is unavailable (pass --ram/--cpu/--storage, or run from a terminal without INTERACTIVE=false)")
	}

	if err := tui.ProbeBackend(backend); err != nil {
		return nil, err
	}
	return tui.Run(limits)
}

// directMode reports whether any configuration flag was given.
func directMode(cmd *cobra.Command) bool {
	for _, name := range directModeFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// interactiveAllowed honors the INTERACTIVE environment override used by
// automated callers.
func interactiveAllowed() bool {
	switch strings.ToLower(os.Getenv("INTERACTIVE")) {
	case "false", "0", "no":
		return false
	}
	return true
}

func rawFromFlags(cmd *cobra.Command) *validate.Raw {
	ram, _ := cmd.Flags().GetString("ram")
	cpu, _ := cmd.Flags().GetString("cpu")
	storage, _ := cmd.Flags().GetString("storage")
	name, _ := cmd.Flags().GetString("name")
	rwShares, _ := cmd.Flags().GetStringArray("share-rw")
	roShares, _ := cmd.Flags().GetStringArray("share-ro")
	overlay, _ := cmd.Flags().GetBool("overlay")

	return &validate.Raw{
		Name:     name,
		RAM:      ram,
		CPU:      cpu,
		Storage:  storage,
		Overlay:  overlay,
		RWShares: rwShares,
		ROShares: roShares,
	}
}

// printBuildPlan echoes the validated configuration before the
// long-running build so the operator can spot a mistake early.
func printBuildPlan(cmd *cobra.Command, cfg domain.Configuration) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Building VM configuration: %s\n", cfg.SizeSummary())
	if cfg.Overlay {
		fmt.Fprintln(w, "  overlay: enabled")
	}
	switch {
	case len(cfg.RWShares) > 0 && len(cfg.ROShares) > 0:
		fmt.Fprintf(w, "  RW shares: %d, RO shares: %d\n", len(cfg.RWShares), len(cfg.ROShares))
	case len(cfg.RWShares) > 0:
		fmt.Fprintf(w, "  RW shares: %d\n", len(cfg.RWShares))
	case len(cfg.ROShares) > 0:
		fmt.Fprintf(w, "  RO shares: %d\n", len(cfg.ROShares))
	}
}
