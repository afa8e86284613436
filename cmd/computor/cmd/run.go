package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/kotabrog/go-computor/pkg/computor"
	"github.com/spf13/cobra"
)

var (
	evalExpr string
	rich     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the calculator",
	Long: `Read expressions one per line from stdin and print their result,
or evaluate a single expression given with -e and exit.

Examples:
  computor run
  computor run --rich
  computor run -e "2 + 3 * 4 = ?"`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate a single inline expression instead of reading a loop")
	runCmd.Flags().BoolVar(&rich, "rich", false, "use a readline-backed line editor with colored output")
}

func runRepl(_ *cobra.Command, _ []string) error {
	session := computor.New()

	if evalExpr != "" {
		return evalOne(session, evalExpr, os.Stdout, os.Stdout)
	}

	if rich {
		return runRichLoop(session)
	}
	return runPlainLoop(session)
}

// evalOne computes a single line and writes its display text to out, or
// its error message to errOut. Returns the error so the caller can decide
// the process exit status.
func evalOne(session *computor.Session, line string, out, errOut io.Writer) error {
	_, display, err := session.Compute(line)
	if err != nil {
		fmt.Fprintf(errOut, "  %s\n", err)
		return err
	}
	fmt.Fprint(out, display)
	return nil
}

func runPlainLoop(session *computor.Session) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		_ = evalOne(session, line, os.Stdout, os.Stderr)
	}
	return scanner.Err()
}

func runRichLoop(session *computor.Session) error {
	rl, err := readline.New("computor> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	errColor := color.New(color.FgRed)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		_, display, err := session.Compute(line)
		if err != nil {
			errColor.Fprintf(os.Stderr, "  %s\n", err)
			continue
		}
		fmt.Print(display)
	}
}
