// Command wsasm is the Whitespace assembler: it converts
// one-mnemonic-per-line source into a conforming Whitespace byte stream.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ark-vm/whitespace/asm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("wsasm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showHelp := fs.Bool("help", false, "Print purpose and usage, then exit")
	debugMode := fs.Bool("debug", false, "Print a stack trace alongside any assembly error")
	fs.Usage = func() { printHelp(stderr) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showHelp {
		printHelp(stdout)
		return 0
	}

	var filename string
	readStdin := false
	for _, a := range fs.Args() {
		if a == "-" {
			readStdin = true
		} else {
			filename = a
		}
	}

	if !readStdin && filename == "" {
		fmt.Fprintln(stderr, "wsasm: error: must specify - or a filename")
		printHelp(stderr)
		return 2
	}

	var src []byte
	var err error
	if readStdin {
		src, err = readAll(stdin)
	} else {
		src, err = os.ReadFile(filename)
	}
	if err != nil {
		fmt.Fprintln(stderr, "wsasm: error reading source:", err)
		return 1
	}

	out, err := asm.Assemble(string(src))
	if err != nil {
		printErr(stderr, "wsasm", err, *debugMode)
		return 1
	}

	if _, err := stdout.Write(out); err != nil {
		fmt.Fprintln(stderr, "wsasm: error writing output:", err)
		return 1
	}
	return 0
}

func printErr(w io.Writer, prefix string, err error, debug bool) {
	if debug {
		fmt.Fprintf(w, "%s: %+v\n", prefix, err)
		return
	}
	fmt.Fprintln(w, prefix+":", err)
}

func readAll(f *os.File) ([]byte, error) {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := f.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}

func printHelp(w *os.File) {
	fmt.Fprintln(w, "wsasm - convert an easy-to-read program into Whitespace code")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "usage: wsasm (- | filename)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  filename   An input file containing readable mnemonic source.")
	fmt.Fprintln(w, "  -          Read the source from standard input (overrides filename).")
	fmt.Fprintln(w, "  --debug    Print a stack trace alongside any assembly error.")
	fmt.Fprintln(w, "  --help     Print this help text.")
}
