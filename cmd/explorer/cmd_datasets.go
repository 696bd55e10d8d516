package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var datasetsFlags struct {
	json bool
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the datasets that can be fetched",
	Args:  cobra.NoArgs,
	RunE:  runDatasets,
}

func init() {
	datasetsCmd.Flags().BoolVar(&datasetsFlags.json, "json", false, "Print the registry as JSON")
}

func runDatasets(cmd *cobra.Command, _ []string) error {
	_, _, svc, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	if datasetsFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.Datasets())
	}

	for i, d := range svc.Datasets() {
		fmt.Fprintf(out, "%d. %s\n", i+1, d.Name)
		if d.Description != "" {
			fmt.Fprintf(out, "   %s\n", d.Description)
		}
		fmt.Fprintf(out, "   path: %s", d.Path)
		if len(d.Tags) > 0 {
			fmt.Fprintf(out, "  tags: %s", strings.Join(d.Tags, ","))
		}
		fmt.Fprintln(out)
	}
	return nil
}
