package main

import (
	"os"

	"github.com/satishbabariya/migrate-go/cli/commands"
	"github.com/satishbabariya/migrate-go/migrate"
)

// main runs the CLI without registered migrations. Projects embed
// commands.Execute with their own registry; this binary covers init,
// history and version.
func main() {
	if err := commands.Execute(migrate.NewRegistry()); err != nil {
		os.Exit(1)
	}
}
