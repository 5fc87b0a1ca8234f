package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "disasm <file.dy>",
		Short: "Compile a script and print its bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disasmFile(args[0])
		},
	})
}

func disasmFile(filename string) error {
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

	fn, cerr := rt.Frontend.Compile(prog)
	if cerr != nil {
		printErrorf("cannot compile: %v (this subset of the script falls back to the tree-walking executor at run time)", cerr)
		os.Exit(1)
	}

	fmt.Print(fn.Chunk.Disassemble(fn.Name))
	return nil
}
