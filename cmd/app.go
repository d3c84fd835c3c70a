// Package cmd implements the dox CLI over the extraction engine.
package cmd

import (
	"fmt"
	"os"

	"github.com/etnz/extract/pattern"
	"github.com/etnz/extract/recipe"
	"github.com/google/subcommands"
)

// Register the subcommands. A main package calls Register, then Execute on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&extractCmd{}, "documents")
	c.Register(&checkCmd{}, "recipes")
	c.Register(&quotesCmd{}, "quotes")
}

// loadTypes loads every recipe under dir and returns the compiled document
// types in deterministic order.
func loadTypes(dir string) ([]*pattern.DocumentType, error) {
	compiled, err := recipe.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if len(compiled) == 0 {
		return nil, fmt.Errorf("no recipes found under %q", dir)
	}
	types := make([]*pattern.DocumentType, len(compiled))
	for i, c := range compiled {
		types[i] = c.Type
	}
	return types, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}
