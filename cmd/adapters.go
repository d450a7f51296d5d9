package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/recon"
	"github.com/etnz/recon/renderer"
	"github.com/google/subcommands"
)

type adaptersCmd struct{}

func (*adaptersCmd) Name() string     { return "adapters" }
func (*adaptersCmd) Synopsis() string { return "list the institution adapters" }
func (*adaptersCmd) Usage() string {
	return `rcn [-adapters <file>] adapters

  Lists the built-in institution adapters and the ones declared in the
  adapters file. See 'rcn topic adapters' for the file format.
`
}

func (*adaptersCmd) SetFlags(f *flag.FlagSet) {}

func (*adaptersCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var configured []*recon.Adapter
	if *adaptersFile != "" {
		var err error
		configured, err = LoadAdapters(*adaptersFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading adapters: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(renderer.AdaptersMarkdown(recon.BuiltinAdapters(), configured))
	return subcommands.ExitSuccess
}
