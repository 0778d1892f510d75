package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"vmselector/internal/config"

	"github.com/spf13/cobra"
)

func presetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the sizing presets offered by the interactive menu",
		RunE:  runPresets,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runPresets(cmd *cobra.Command, args []string) error {
	presets := config.Presets()

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(presets)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRAM\tCPU\tSTORAGE")
	for _, p := range presets {
		fmt.Fprintf(w, "%s\t%dGB\t%d\t%dGB\n", p.Name, p.RAMGB, p.CPUCores, p.StorageGB)
	}
	return w.Flush()
}
