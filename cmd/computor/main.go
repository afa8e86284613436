// Command computor is the CLI entry point: it delegates to the Cobra
// command tree in cmd/computor/cmd.
package main

import (
	"os"

	"github.com/kotabrog/go-computor/cmd/computor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
