package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type checkCmd struct {
	recipesDir string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate the recipe files" }
func (*checkCmd) Usage() string {
	return `dox check -recipes <dir>

  Loads and compiles every recipe, reporting bad regexps, unknown capture
  targets, duplicate captures and other structural mistakes.
`
}

func (p *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.recipesDir, "recipes", "recipes", "Directory containing the recipe YAML files.")
}

func (p *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	types, err := loadTypes(p.recipesDir)
	if err != nil {
		return fail(err)
	}
	for _, dt := range types {
		fmt.Printf("%s: ok (%d blocks)\n", dt.Name, len(dt.Blocks))
	}
	return subcommands.ExitSuccess
}
