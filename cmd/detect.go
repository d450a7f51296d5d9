package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/recon"
	"github.com/etnz/recon/renderer"
	"github.com/google/subcommands"
)

type detectCmd struct {
	hint string
}

func (*detectCmd) Name() string     { return "detect" }
func (*detectCmd) Synopsis() string { return "tell which parser reads a statement" }
func (*detectCmd) Usage() string {
	return `rcn detect [-hint <name>] <statement>...

  Scores every parser against each statement and shows the one selected,
  without importing anything. Use '-' to read a statement from stdin.

Usage Examples:
$ rcn detect march.csv
$ rcn -adapters banks.yaml detect export.xls
$ cat march.ofx | rcn detect -hint march.ofx -

`
}

func (c *detectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.hint, "hint", "", "File name, extension or MIME type of a statement read from stdin.")
}

func (c *detectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no statement given")
		return subcommands.ExitUsageError
	}
	registry, err := Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading adapters: %v\n", err)
		return subcommands.ExitFailure
	}

	status := subcommands.ExitSuccess
	for _, name := range f.Args() {
		src, err := readSource(name, c.hint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading statement: %v\n", err)
			return subcommands.ExitFailure
		}
		chosen := ""
		p, _, err := registry.Detect(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error detecting %q: %v\n", name, err)
			status = subcommands.ExitFailure
		} else {
			chosen = p.Name()
		}
		printMarkdown(renderer.DetectionMarkdown(name, registry.Scores(src), chosen))
	}
	return status
}

// readSource reads a statement file, or stdin for "-". The hint defaults to
// the file name.
func readSource(name, hint string) (*recon.Source, error) {
	var content []byte
	var err error
	if name == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(name)
		if hint == "" {
			hint = filepath.Base(name)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", name, err)
	}
	return recon.NewSource(content, hint), nil
}
