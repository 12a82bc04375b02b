// Command wsvm is the Whitespace executor: it parses a Whitespace program,
// resolves labels, and interprets it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ark-vm/whitespace/config"
	"github.com/ark-vm/whitespace/diag"
	"github.com/ark-vm/whitespace/diagserver"
	"github.com/ark-vm/whitespace/label"
	"github.com/ark-vm/whitespace/lexer"
	"github.com/ark-vm/whitespace/vm"
	"github.com/ark-vm/whitespace/wsio"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("wsvm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		showHelp   = fs.Bool("help", false, "Print purpose and usage, then exit")
		runTest    = fs.Bool("test", false, "Run the embedded self-test program (overrides filename and -)")
		debugMode  = fs.Bool("debug", false, "Enable a verbose per-instruction trace on standard error")
		describe   = fs.Bool("describe", false, "Tokenize and print MNEMONIC ARG per line; do not execute")
		configPath = fs.String("config", "", "Path to a TOML configuration file")
		heapSize   = fs.Int("heap-size", 0, "Heap size override (default: config/built-in 512)")
		serve      = fs.Bool("serve", false, "Also serve read-only diagnostics over HTTP, at the configured port")
		readStdin  = false
	)
	fs.Usage = func() { printHelp(stderr) }

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showHelp {
		printHelp(stdout)
		return 0
	}

	var filename string
	for _, a := range fs.Args() {
		if a == "-" {
			readStdin = true
		} else {
			filename = a
		}
	}

	if !*runTest && !readStdin && filename == "" {
		fmt.Fprintln(stderr, "wsvm: error: must specify a filename, -, or --test")
		printHelp(stderr)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "wsvm:", err)
		return 1
	}
	if *heapSize > 0 {
		cfg.Execution.HeapSize = *heapSize
	}
	debug := *debugMode || cfg.Logging.Level == "debug"

	var source []byte
	switch {
	case *runTest:
		source = []byte(vm.SelfTestProgram)
	case readStdin:
		source, err = readAll(stdin)
	default:
		source, err = os.ReadFile(filename)
	}
	if err != nil {
		fmt.Fprintln(stderr, "wsvm: error reading source:", err)
		return 1
	}

	filtered := lexer.Filter(source)
	toks, err := wsio.Tokenize(filtered)
	if err != nil {
		printErr(stderr, "wsvm", err, debug)
		return 1
	}

	if *describe {
		for _, t := range toks {
			fmt.Fprintln(stdout, t.Describe())
		}
		return 0
	}

	labels := label.Resolve(toks)

	color := term.IsTerminal(int(stderr.Fd()))
	format := diag.FormatText
	if cfg.Logging.Format == "json" {
		format = diag.FormatJSON
	}
	logger := diag.NewLogger(stderr, format, color && cfg.Display.ColorOutput, debug)

	machine := vm.New(toks, labels, vm.Options{
		HeapSize: cfg.Execution.HeapSize,
		Stdin:    stdin,
		Stdout:   stdout,
		Logger:   logger,
		Echo:     cfg.Input.Echo,
	})

	var srv *diagserver.Server
	if *serve {
		srv = diagserver.New(fmt.Sprintf(":%d", cfg.Server.Port))
		srv.SetMachine(machine)
		errc := make(chan error, 1)
		srv.Start(errc)
		defer srv.Close()
	}

	runErr := machine.Run()
	if srv != nil {
		// Safe only because Run has already returned on this goroutine:
		// nothing else is mutating machine at this point.
		srv.Finish(machine)
	}
	if runErr != nil {
		printErr(stderr, "wsvm", runErr, debug)
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
	fmt.Fprintln(w, "wsvm - execute a program in the Whitespace programming language")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "usage: wsvm [--debug | --describe] [--config FILE] [--heap-size N] [--serve] filename")
	fmt.Fprintln(w, "       wsvm [--debug | --describe] -")
	fmt.Fprintln(w, "       wsvm [--debug | --describe] --test")
	fmt.Fprintln(w, "       wsvm --help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  filename       An input file containing Whitespace code.")
	fmt.Fprintln(w, "  -              Read the Whitespace source from standard input (overrides filename).")
	fmt.Fprintln(w, "  --test         Run the embedded self-test program (overrides filename and -).")
	fmt.Fprintln(w, "  --debug        Enable a verbose per-instruction trace on standard error,")
	fmt.Fprintln(w, "                 and print a stack trace alongside any fault.")
	fmt.Fprintln(w, "  --describe     Print MNEMONIC ARG per token instead of executing.")
	fmt.Fprintln(w, "  --config FILE  Load a TOML configuration file.")
	fmt.Fprintln(w, "  --heap-size N  Override the heap size (default 512).")
	fmt.Fprintln(w, "  --serve        Also serve read-only diagnostics over HTTP, on the")
	fmt.Fprintln(w, "                 port set by [server] port in the config file (default 8787).")
	fmt.Fprintln(w, "  --help         Print this help text.")
}
