package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/extract"
	"github.com/google/subcommands"
)

type extractCmd struct {
	recipesDir string
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "extract items from text documents" }
func (*extractCmd) Usage() string {
	return `dox extract -recipes <dir> <file.txt>...

  Runs every recipe over the given text documents and prints the extracted
  items as JSON lines on stdout. Documents no recipe claims, and sections
  that fail to match, are reported on stderr; a partial harvest still
  succeeds unless nothing was extracted at all.
`
}

func (p *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.recipesDir, "recipes", "recipes", "Directory containing the recipe YAML files.")
}

func (p *extractCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no documents given.")
		return subcommands.ExitUsageError
	}
	types, err := loadTypes(p.recipesDir)
	if err != nil {
		return fail(err)
	}
	session, err := extract.NewSession(types, nil, nil)
	if err != nil {
		return fail(err)
	}

	for _, name := range f.Args() {
		text, err := os.ReadFile(name)
		if err != nil {
			return fail(err)
		}
		session.Extract(extract.RawDocument{Name: name, Text: string(text)})
	}

	items := session.Items()
	if err := extract.WriteItems(os.Stdout, items); err != nil {
		return fail(err)
	}
	for _, err := range session.Errs() {
		fmt.Fprintln(os.Stderr, err)
	}
	if len(items) == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
