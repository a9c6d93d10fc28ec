package main

import (
	"fmt"
	"os"

	"github.com/balkashynov/studyfocus/internal/commands"
	"github.com/balkashynov/studyfocus/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.HandlePanic()

	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
