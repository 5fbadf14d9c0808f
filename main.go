/* Command minic runs the embeddable C-subset interpreter implemented by
this module's package main: a lexer, type system, value arena, expression
evaluator, statement driver, and host bridge layered the way a small
embedded scripting engine is, rather than a general-purpose compiler.

Usage:

	minic file.c [args...]
	minic -s file.c        # stream the file (or stdin) instead of reading it whole first
	minic -i               # interactive REPL
	minic -config cfg.toml file.c

See SPEC_FULL.md for the full component design.
*/
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ergochat/readline"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/dcorbin/minic/internal/logio"
)

func main() {
	var (
		memLimit    uint
		timeout     time.Duration
		trace       bool
		streamMode  bool
		interactive bool
		quiet       bool
		dump        bool
		configPath  string
	)
	flag.UintVar(&memLimit, "mem-limit", 0, "enable arena cell limit")
	flag.DurationVar(&timeout, "timeout", 0, "set a deadline on the run context (the interpreter does not check it)")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&streamMode, "s", false, "read and parse input one line at a time")
	flag.BoolVar(&interactive, "i", false, "run an interactive REPL")
	flag.BoolVar(&quiet, "q", false, "suppress the interactive banner")
	flag.BoolVar(&dump, "dump", false, "on failure, print the call-frame stack")
	flag.StringVar(&configPath, "config", "", "path to a TOML interpreter config")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	var cfg InterpreterConfig
	if configPath != "" {
		var err error
		cfg, err = LoadConfigFile(configPath)
		if err != nil {
			log.Errorf("loading config: %v", err)
			return
		}
	}

	opts := []InterpreterOption{
		WithMemLimit(memLimit),
		WithOutput(os.Stdout),
		WithConfig(cfg),
	}
	if trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch {
	case interactive:
		runInteractive(ctx, &log, opts, quiet)
	case streamMode:
		runStreaming(ctx, &log, opts)
	default:
		runFile(ctx, &log, opts, dump)
	}
}

// runFile parses and runs the file named by the first positional
// argument as a single translation unit, the ordinary non-interactive
// mode. With dump set, a run that halted (exit() or an output failure)
// prints the call frames still active at the halt; an error returned
// normally has already popped its frames, so nothing is printed for it.
func runFile(ctx context.Context, log *logio.Logger, opts []InterpreterOption, dump bool) {
	args := flag.Args()
	if len(args) < 1 {
		log.Errorf("usage: minic file.c [args...]")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Errorf("reading %s: %v", args[0], err)
		return
	}
	in := New(append(opts, WithInput(bytes.NewReader(data)))...)
	err = in.Run(ctx)
	var ee *ExitError
	if errors.As(err, &ee) && ee.Code == 0 {
		err = nil
	}
	if err != nil && dump {
		if trace := in.frameTrace(); len(trace) > 0 {
			fmt.Fprintln(os.Stderr, "call stack:")
			for _, name := range trace {
				fmt.Fprintf(os.Stderr, "  %s\n", name)
			}
		}
	}
	log.ErrorIf(err)
}

// runStreaming feeds the source file's lines into the interpreter one at
// a time via internal/fileinput's sequential rune reading, so a parse
// error reports the exact line at fault without needing the whole file
// buffered first -- useful for piping a generated program through stdin.
func runStreaming(ctx context.Context, log *logio.Logger, opts []InterpreterOption) {
	args := flag.Args()
	var r *os.File
	if len(args) < 1 {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			log.Errorf("opening %s: %v", args[0], err)
			return
		}
		defer f.Close()
		r = f
	}
	in := New(append(opts, WithInput(r))...)
	err := in.Run(ctx)
	var ee *ExitError
	if errors.As(err, &ee) && ee.Code == 0 {
		err = nil
	}
	log.ErrorIf(err)
}

// runInteractive drives a REPL over ergochat/readline, with history
// persisted to ~/.minic_history (resolved through go-homedir so it also
// works under an unusual HOME on the host platform). Each accepted line
// is parsed immediately so declarations and expression statements take
// effect right away; `main`, if ever defined at the REPL, is never
// called automatically since there is no single program to run to
// completion in this mode.
func runInteractive(ctx context.Context, log *logio.Logger, opts []InterpreterOption, quiet bool) {
	in := New(append(opts, WithOutput(os.Stdout))...)

	historyPath := ""
	if home, err := homedir.Dir(); err == nil {
		historyPath = filepath.Join(home, ".minic_history")
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:      "minic> ",
		HistoryFile: historyPath,
	})
	if err != nil {
		log.Errorf("starting readline: %v", err)
		return
	}
	defer rl.Close()

	if !quiet {
		fmt.Fprintln(os.Stdout, "minic interactive mode -- ^D to exit")
	}

	for i := 0; ; i++ {
		line, err := rl.ReadLine()
		if err != nil {
			break
		}
		if line == "" {
			continue
		}
		if perr := in.Parse(fmt.Sprintf("<repl:%d>", i), line); perr != nil {
			fmt.Fprintln(os.Stderr, perr)
		}
	}
}
