package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExtension(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\necho \"$RCN_DEFAULT_CURRENCY $RCN_DATE_FORMAT $RCN_VERBOSE\" > \"$1\"\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, "rcn-hello"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	oldCurrency, oldFormat, oldVerbose := *defaultCurrency, *dateFormat, *Verbose
	t.Cleanup(func() { *defaultCurrency, *dateFormat, *Verbose = oldCurrency, oldFormat, oldVerbose })
	*defaultCurrency, *dateFormat, *Verbose = "XYZ", "eu-slash", true

	out := filepath.Join(dir, "env.txt")
	found, code := RunExtension("hello", []string{out})
	if !found || code != 3 {
		t.Errorf("RunExtension(hello) = %v, %d, want true, 3", found, code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "XYZ eu-slash true"; strings.TrimSpace(string(got)) != want {
		t.Errorf("extension environment = %q, want %q", strings.TrimSpace(string(got)), want)
	}
}

func TestRunExtensionMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, code := RunExtension("hello", nil); found || code != 0 {
		t.Errorf("RunExtension(hello) = %v, %d, want false, 0", found, code)
	}
}

func globalFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("rcn", flag.ContinueOnError)
	fs.String("adapters", "", "")
	fs.String("default-currency", "", "")
	fs.String("date-format", "", "")
	fs.Bool("v", false, "")
	return fs
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAdaptersFile, "")
	t.Setenv(EnvDefaultCurrency, "EUR")
	t.Setenv(EnvDateFormat, "eu-slash")
	t.Setenv(EnvVerbose, "true")

	fs := globalFlags()
	if err := fs.Parse([]string{"-date-format", "iso"}); err != nil {
		t.Fatal(err)
	}
	if err := applyEnv(fs); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	want := map[string]string{"adapters": "", "default-currency": "EUR", "date-format": "iso", "v": "true"}
	for name, value := range want {
		if got := fs.Lookup(name).Value.String(); got != value {
			t.Errorf("flag %s = %q, want %q", name, got, value)
		}
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv(EnvVerbose, "maybe")
	if err := applyEnv(globalFlags()); err == nil || !strings.Contains(err.Error(), EnvVerbose) {
		t.Errorf("applyEnv() error = %v, want an error naming %s", err, EnvVerbose)
	}
}
