package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askFlags struct {
	dataset    string
	year       int
	showDigest bool
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Fetch a dataset and ask one question about it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	f := askCmd.Flags()
	f.StringVar(&askFlags.dataset, "dataset", "", "Dataset name or number from 'explorer datasets' (required)")
	f.IntVar(&askFlags.year, "year", 0, "Data year (default explorer.default_year)")
	f.BoolVar(&askFlags.showDigest, "show-digest", false, "Print the digest sent with the question")

	_ = askCmd.MarkFlagRequired("dataset")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, _, svc, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	session := svc.StartSession()
	defer svc.EndSession(session.ID)

	name := askFlags.dataset
	if resolved, ok := svc.ResolveName(name); ok {
		name = resolved
	}

	dataset, err := svc.Fetch(ctx, session, name, askFlags.year)
	if err != nil {
		return errors.New(svc.UserMessage("fetch", err))
	}
	if dataset == nil {
		return fmt.Errorf("unknown dataset %q", askFlags.dataset)
	}

	out, err := svc.Ask(ctx, session, strings.Join(args, " "))
	if err != nil {
		return errors.New(svc.UserMessage("ask", err))
	}

	w := cmd.OutOrStdout()
	if askFlags.showDigest {
		fmt.Fprintf(w, "%s\n\n", out.Digest)
	}
	fmt.Fprintln(w, out.Answer)
	return nil
}
