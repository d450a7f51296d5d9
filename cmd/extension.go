package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	EnvAdaptersFile    = "RCN_ADAPTERS_FILE"
	EnvDefaultCurrency = "RCN_DEFAULT_CURRENCY"
	EnvDateFormat      = "RCN_DATE_FORMAT"
	EnvVerbose         = "RCN_VERBOSE"
)

// envFlags maps the global flags to the environment variables that carry them.
var envFlags = map[string]string{
	"adapters":         EnvAdaptersFile,
	"default-currency": EnvDefaultCurrency,
	"date-format":      EnvDateFormat,
	"v":                EnvVerbose,
}

// LoadEnv reads an optional .env file, then sets every global flag that was
// not given on the command line from its environment variable.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load .env file: %w", err)
	}
	return applyEnv(flag.CommandLine)
}

func applyEnv(flags *flag.FlagSet) error {
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for name, env := range envFlags {
		v, ok := os.LookupEnv(env)
		if !ok || v == "" || set[name] || flags.Lookup(name) == nil {
			continue
		}
		if err := flags.Set(name, v); err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
	}
	return nil
}

// RunExtension attempts to find and execute an external rcn-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "rcn-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Debug("external command not found", "command", externalCmdName, "err", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvAdaptersFile+"="+*adaptersFile)
	cmd.Env = append(cmd.Env, EnvDefaultCurrency+"="+*defaultCurrency)
	cmd.Env = append(cmd.Env, EnvDateFormat+"="+*dateFormat)
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
