package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "dyms",
	Short:   "Run and inspect dyms scripts",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printErrorf(format string, args ...interface{}) {
	if noColor {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, format+"\n", args...)
}

func main() {
	execute()
}
