package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bcompile/pkg/compiler"
	"bcompile/pkg/irprint"
)

func main() {
	outPath := flag.String("o", "", "output IR file path (default: input with .ir extension)")
	targetName := flag.String("t", "ir", "compilation target, or \"list\" to print the recognized targets")
	help := flag.Bool("h", false, "print usage and exit")
	flag.BoolVar(help, "help", false, "print usage and exit")
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	if *targetName == "list" {
		for _, t := range compiler.AllTargets() {
			fmt.Println(t)
		}
		return
	}

	target, ok := compiler.ParseTarget(*targetName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unrecognized target %q; run with -t list to see the recognized targets\n", *targetName)
		os.Exit(2)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one input file")
		flag.Usage()
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	source, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", inPath, err)
		os.Exit(1)
	}

	prog, err := compiler.Compile(inPath, source, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		os.Exit(1)
	}

	if prog.ErrorCount != 0 {
		fmt.Fprintf(os.Stderr, "compilation failed with %d error(s)\n", prog.ErrorCount)
		os.Exit(1)
	}

	if target != compiler.TargetIR {
		fmt.Fprintf(os.Stderr, "target %q is not implemented\n", target)
		os.Exit(1)
	}

	output := *outPath
	if output == "" {
		output = defaultOutputPath(inPath)
	}

	if err := os.WriteFile(output, []byte(irprint.Print(prog)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write IR file %q: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("compiled %s -> %s\n", inPath, output)
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + ".ir"
	}
	return strings.TrimSuffix(inPath, ext) + ".ir"
}
