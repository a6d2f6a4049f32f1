// Command lazy is the runnable front end for the lazylang interpreter: run a
// file, parse-only check a file, drop into a line-editing REPL, or evaluate
// a file and print one projected field of its result.
//
// This is the ambient "does it actually run" harness every reference
// implementation in this corpus ships, built on the public pkg/lazylang
// API — it is not a full CLI contract, just enough to exercise Parse,
// Evaluate, Format, and ForceAndProject from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazylang/lazylang/pkg/lazylang/lazylang"
)

var (
	modulePath string
	styleFlag  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lazy",
	Short: "lazylang interpreter",
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Evaluate a lazylang program and print its result",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a lazylang program and report syntax errors without evaluating it",
	Args:  cobra.ExactArgs(1),
	RunE:  parseFile,
}

var fmtValueCmd = &cobra.Command{
	Use:   "fmt-value <file>",
	Short: "Evaluate a program and print one field of its result",
	Long: `Evaluate <file>, project the top-level field named by --field out of
its result (the whole result if --field is empty), and print it in the
style given by --style (pretty, json, yaml). A dotted name is looked up as
a single key; nested fields are not traversed.`,
	Args: cobra.ExactArgs(1),
	RunE: fmtValue,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive lazylang REPL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		startRepl(os.Stdin, os.Stdout)
		return nil
	},
}

var fieldFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&modulePath, "module-path", "", "colon-separated module search path")
	fmtValueCmd.Flags().StringVar(&fieldFlag, "field", "", "top-level field to project out of the result")
	fmtValueCmd.Flags().StringVar(&styleFlag, "style", "pretty", "output style: pretty, json, yaml")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fmtValueCmd)
	rootCmd.AddCommand(replCmd)
}

func runFile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	source, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	v, serr := lazylang.Evaluate(string(source), filename, cwd, lazylang.WithModulePath(modulePath))
	if serr != nil {
		printSourceError(serr)
		os.Exit(1)
	}

	out, serr := lazylang.Format(v, lazylang.StylePretty)
	if serr != nil {
		printSourceError(serr)
		os.Exit(1)
	}
	fmt.Println(out)
	return nil
}

func parseFile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	source, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	if _, serr := lazylang.Parse(string(source), filename); serr != nil {
		printSourceError(serr)
		os.Exit(1)
	}
	fmt.Println("ok")
	return nil
}

func fmtValue(cmd *cobra.Command, args []string) error {
	filename := args[0]
	source, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	v, serr := lazylang.Evaluate(string(source), filename, cwd, lazylang.WithModulePath(modulePath))
	if serr != nil {
		printSourceError(serr)
		os.Exit(1)
	}

	if fieldFlag != "" {
		v, serr = lazylang.ForceAndProject(v, fieldFlag)
		if serr != nil {
			printSourceError(serr)
			os.Exit(1)
		}
	}

	style, err := parseStyle(styleFlag)
	if err != nil {
		return err
	}

	out, serr := lazylang.Format(v, style)
	if serr != nil {
		printSourceError(serr)
		os.Exit(1)
	}
	fmt.Println(out)
	return nil
}

func parseStyle(s string) (lazylang.Style, error) {
	switch s {
	case "pretty", "":
		return lazylang.StylePretty, nil
	case "json":
		return lazylang.StyleJSON, nil
	case "yaml":
		return lazylang.StyleYAML, nil
	default:
		return lazylang.StylePretty, fmt.Errorf("unknown --style %q: want pretty, json, or yaml", s)
	}
}

func printSourceError(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
}
