package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "run <file.dy>",
		Short: "Parse and execute a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	})
}

func runFile(filename string) error {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".dy" && ext != ".dx" {
		printErrorf("only .dy and .dx files are supported (got %s)", ext)
		os.Exit(1)
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		printErrorf("reading %s: %v", filename, err)
		os.Exit(1)
	}

	rt := newRuntime()
	prog, perr := rt.Parser.Parse(string(src))
	if perr != nil {
		printErrorf("%v", perr)
		os.Exit(1)
	}

	if _, rerr := rt.ExecProgram(prog); rerr != nil {
		printErrorf("%s", rerr.Error())
		os.Exit(1)
	}

	os.Stdout.WriteString(rt.TakeOutput())
	return nil
}
