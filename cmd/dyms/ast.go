package main

import (
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ast <file.dy>",
		Short: "Parse a script and dump its AST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpAST(args[0])
		},
	})
}

func dumpAST(filename string) error {
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

	spew.Config.Indent = "  "
	spew.Dump(prog)
	return nil
}
