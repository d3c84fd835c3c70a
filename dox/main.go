package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/etnz/extract/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// optional per-project environment (API keys for quote feeds)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env (ignored): %v", err)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
