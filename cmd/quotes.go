package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/extract/date"
	"github.com/etnz/extract/quote"
	"github.com/google/subcommands"
)

type quotesCmd struct {
	specFile string
	from     string
	to       string
}

func (*quotesCmd) Name() string     { return "quotes" }
func (*quotesCmd) Synopsis() string { return "fetch and normalize a quote series" }
func (*quotesCmd) Usage() string {
	return `dox quotes -spec <feed.yaml> [-from <date>] [-to <date>] <key>

  Fetches the raw payload through the daily-cached HTTP client, normalizes
  it with the feed spec, and prints the merged series one day per line.
`
}

func (p *quotesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.specFile, "spec", "", "Feed spec YAML file.")
	f.StringVar(&p.from, "from", "", "Start of the range (YYYY-MM-DD).")
	f.StringVar(&p.to, "to", "", "End of the range (YYYY-MM-DD), defaults to today.")
}

func (p *quotesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.specFile == "" || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -spec and exactly one key are required.")
		return subcommands.ExitUsageError
	}
	spec, err := quote.LoadSpec(p.specFile)
	if err != nil {
		return fail(err)
	}

	var from, to date.Date
	if p.from != "" {
		if from, err = date.Parse(p.from); err != nil {
			return fail(fmt.Errorf("parsing -from: %w", err))
		}
	}
	if p.to != "" {
		if to, err = date.Parse(p.to); err != nil {
			return fail(fmt.Errorf("parsing -to: %w", err))
		}
	} else {
		to = date.Today()
	}

	prices, err := spec.Fetch(ctx, quote.NewHTTPFetcher(), f.Arg(0), from, to)
	if err != nil {
		return fail(err)
	}

	var series quote.Series
	quote.MergeInto(&series, prices)
	for _, price := range series.Values() {
		fmt.Println(price)
	}
	return subcommands.ExitSuccess
}
