package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"edudata-explorer/internal/explorer"
	"edudata-explorer/internal/models"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

const replHelp = `Commands:
  datasets                 list datasets
  fetch <name|#> [year]    fetch a dataset (year defaults to %d)
  show                     print the digest of the current data
  ask <question>           ask about the current data (bare text works too)
  reset                    forget the current data
  help                     this text
  quit                     leave
`

func runRepl(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	_, _, svc, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	session := svc.StartSession()
	defer svc.EndSession(session.ID)

	r := &repl{svc: svc, session: session, out: cmd.OutOrStdout()}
	return r.run(ctx, cmd.InOrStdin())
}

// repl is one interactive session bound to a single session slot.
type repl struct {
	svc     *explorer.Service
	session *models.Session
	out     io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(r.out, "Education data explorer. Type 'help' for commands.\n")
	r.listDatasets()

	scanner := bufio.NewScanner(in)
	// Scan() runs until CTRL-D
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		if quit := r.handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
	fmt.Fprintln(r.out)
	return scanner.Err()
}

// handle executes one input line and reports whether the session is over.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(command) {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintf(r.out, replHelp, r.svc.DefaultYear())
	case "datasets":
		r.listDatasets()
	case "fetch":
		r.fetch(ctx, rest)
	case "show":
		r.show(ctx)
	case "reset":
		r.session.Clear()
		fmt.Fprintln(r.out, "Cleared.")
	case "ask":
		r.ask(ctx, rest)
	default:
		r.ask(ctx, line)
	}
	return false
}

func (r *repl) listDatasets() {
	for i, d := range r.svc.Datasets() {
		suffix := ""
		if d.YearPartitioned {
			suffix = fmt.Sprintf(" [year %d-%d]", models.MinYear, models.MaxYear)
		}
		fmt.Fprintf(r.out, "  %d. %s%s\n", i+1, d.Name, suffix)
	}
}

func (r *repl) fetch(ctx context.Context, args string) {
	name, year, err := parseFetchArgs(args)
	if err != nil {
		fmt.Fprintln(r.out, err.Error())
		return
	}
	if resolved, ok := r.svc.ResolveName(name); ok {
		name = resolved
	}

	dataset, err := r.svc.Fetch(ctx, r.session, name, year)
	if err != nil {
		fmt.Fprintln(r.out, r.svc.UserMessage("fetch", err))
		return
	}
	if dataset == nil {
		fmt.Fprintf(r.out, "Unknown dataset %q. Type 'datasets' to list them.\n", name)
		return
	}

	source := "fetched"
	if dataset.Cached {
		source = "from memo"
	}
	fmt.Fprintf(r.out, "Loaded %s (%d bytes, %s).\n", dataset.Selector, len(dataset.Data), source)
}

func (r *repl) show(ctx context.Context) {
	out, err := r.svc.Digest(ctx, r.session)
	if err != nil {
		fmt.Fprintln(r.out, r.svc.UserMessage("show", err))
		return
	}
	fmt.Fprintln(r.out, out.Digest)
}

func (r *repl) ask(ctx context.Context, question string) {
	out, err := r.svc.Ask(ctx, r.session, question)
	if err != nil {
		fmt.Fprintln(r.out, r.svc.UserMessage("ask", err))
		return
	}
	fmt.Fprintln(r.out, out.Answer)
}

// parseFetchArgs splits "<name|#> [year]". The dataset name may contain
// spaces; a trailing integer after it is the year.
func parseFetchArgs(args string) (string, int, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", 0, fmt.Errorf("usage: fetch <name|#> [year]")
	}
	year := 0
	if len(fields) > 1 {
		if y, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			year = y
			fields = fields[:len(fields)-1]
		}
	}
	return strings.Join(fields, " "), year, nil
}
