// Package cmd implements the CLI application to import and reconcile bank
// and broker statements.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/etnz/recon"
	"github.com/etnz/recon/date"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&detectCmd{}, "statements")
	c.Register(&importCmd{}, "statements")
	c.Register(&reconcileCmd{}, "statements")

	c.Register(&adaptersCmd{}, "help")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var adaptersFile = flag.String("adapters", "", "Path to a configuration file (yaml, json or toml) declaring extra institution adapters")
var defaultCurrency = flag.String("default-currency", "", "Currency of statements that do not state one")
var dateFormat = flag.String("date-format", "", "Date convention tried first for ambiguous dates (iso, us-slash, eu-slash, ...)")
var rawMarkdown = flag.Bool("raw", false, "Print reports as plain markdown instead of rendering them for the terminal")

// Verbose turns debug logging on.
var Verbose = flag.Bool("v", false, "Log every pipeline stage")

// Setup configures the logger once the flags are parsed.
func Setup() {
	log.SetReportTimestamp(false)
	if *Verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// Registry returns the parsers to detect statements with: the built-in ones
// and the adapters declared in the adapters file.
func Registry() (recon.Registry, error) {
	if *adaptersFile == "" {
		return recon.DefaultRegistry(), nil
	}
	adapters, err := LoadAdapters(*adaptersFile)
	if err != nil {
		return nil, err
	}
	return recon.DefaultRegistry(adapters...), nil
}

// Defaults returns what the global flags tell about statements.
func Defaults() (recon.ImportContext, error) {
	hint := date.NoHint
	if *dateFormat != "" {
		var err error
		if hint, err = date.ParseConvention(*dateFormat); err != nil {
			return recon.ImportContext{}, err
		}
	}
	return recon.ImportContext{Currency: *defaultCurrency, DateHint: hint}, nil
}

// printMarkdown renders md for the terminal.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Warn("cannot render markdown", "err", err)
		fmt.Print(md)
		return
	}
	fmt.Fprint(os.Stdout, out)
}
