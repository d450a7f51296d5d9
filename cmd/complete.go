package cmd

import (
	"flag"

	"github.com/etnz/recon/date"
	"github.com/etnz/recon/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// fileFlags are the flags taking a file name.
var fileFlags = map[string]bool{"adapters": true, "ledger": true, "o": true, "seen": true}

// Complete answers a shell completion request and exits. It returns when the
// process is not run for completion.
//
// Install the completion with COMP_INSTALL=1 rcn.
func Complete(c *subcommands.Commander, name string) {
	completionCommand(c).Complete(name)
}

func completionCommand(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs), Args: predict.Files("*")}
		if cmd.Name() == "topic" {
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		switch {
		case fileFlags[f.Name]:
			flags[f.Name] = predict.Files("*")
		case f.Name == "format":
			flags[f.Name] = predict.Set{"csv", "json", "sqlite"}
		case f.Name == "date-format":
			var names predict.Set
			for _, c := range date.Conventions {
				names = append(names, c.String())
			}
			flags[f.Name] = names
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}
