package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "computor",
	Short: "An interactive symbolic calculator",
	Long: `computor evaluates arithmetic over real, complex, and matrix values,
partially simplifies expressions it cannot fully reduce, and solves
polynomial equations of degree up to two.

  computor run              # read expressions from stdin, one per line
  computor run --rich       # same, with a readline-backed line editor
  computor run -e "2 + 2"   # evaluate a single expression and exit`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}
