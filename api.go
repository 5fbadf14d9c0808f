package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/dcorbin/minic/internal/flushio"
	"github.com/dcorbin/minic/internal/panicerr"
	"github.com/dcorbin/minic/internal/valuearena"
)

// New builds an embeddable Interpreter, applying opts over a sane set of
// defaults (discard output, empty input) using a functional-options
// pattern.
func New(opts ...InterpreterOption) *Interpreter {
	var in Interpreter
	in.types = newTypeTable(&in.strTab)
	in.global = &Scope{id: 0, vars: make(map[Name]*Variable)}
	in.arena.PageSize = valuearena.DefaultPageSize
	in.staticArena.PageSize = valuearena.DefaultPageSize
	in.funcs = make(map[Name]*FuncDescriptor)
	in.macros = make(map[Name]*MacroDescriptor)
	in.seen = make(map[string]bool)
	defaultOptions.apply(&in)
	in.installStdlib()
	InterpreterOptions(opts...).apply(&in)
	return &in
}

// Run parses and executes every translation unit queued onto the
// Interpreter's input, recovering any halt/panic down to a single
// returned error; a clean `exit(n)` comes back as an *ExitError rather
// than a generic failure.
func (in *Interpreter) Run(ctx context.Context) error {
	err := panicerr.Recover("interpreter", func() error {
		return in.run(ctx)
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		err = he.error
	}
	var ee exitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.code}
	}
	return err
}

// ExitError is returned by Run when interpreted code called exit(n);
// embedders typically treat this as success with a status code rather
// than a failure worth reporting.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }

func (in *Interpreter) run(ctx context.Context) error {
	in.lx = newLexer(in)
	p := &parser{lx: in.lx}
	in.mode = modeRun
	if err := in.parseTopLevel(p); err != nil {
		return err
	}
	return in.CallMain(ctx)
}

// Parse reads source as a single translation unit without calling main,
// for embedders that only want declarations registered (a header-only
// #include body, or a REPL line evaluated for its side effects).
func (in *Interpreter) Parse(name, source string) error {
	return panicerr.Recover("interpreter", func() error {
		in.mode = modeRun
		return in.parseSource(name, source)
	})
}

// CallMain invokes the interpreted program's `main` if one was defined,
// per the convention that main is the sole entry point once parsing
// completes; a program with no main simply returns nil, useful for a
// library-only #include body loaded through Parse.
func (in *Interpreter) CallMain(ctx context.Context) error {
	fn, ok := in.funcs[in.strTab.lookup("main")]
	if !ok || fn.BodyPos == 0 {
		return nil
	}
	if in.lx == nil {
		in.lx = newLexer(in)
	}
	p := &parser{lx: in.lx}
	v, err := in.call(p, Value{Type: in.funcType(fn), Func: fn}, nil)
	if err != nil {
		return err
	}
	if v.Type != nil && v.Type.Resolved().Kind != KVoid {
		return exitError{code: int(v.I)}
	}
	return nil
}

// InterpreterOption configures an Interpreter at construction time.
type InterpreterOption interface{ apply(in *Interpreter) }

var defaultOptions = InterpreterOptions(
	withInput(bytes.NewReader(nil)),
	withOutput(ioutil.Discard),
)

// InterpreterOptions flattens a list of options (including nested option
// lists) into a single applyable option.
func InterpreterOptions(opts ...InterpreterOption) InterpreterOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

func WithInput(r io.Reader) InterpreterOption            { return withInput(r) }
func WithInputWriter(w io.WriterTo) InterpreterOption    { return withInputWriter(w) }
func WithOutput(w io.Writer) InterpreterOption           { return withOutput(w) }
func WithTee(w io.Writer) InterpreterOption              { return teeOption{w} }
func WithMemLimit(limit uint) InterpreterOption          { return memLimitOption(limit) }
func WithConfig(cfg InterpreterConfig) InterpreterOption { return configOption{cfg} }

func WithLogf(logfn func(mess string, args ...interface{})) InterpreterOption {
	return withLogfn(logfn)
}

type noption struct{}

func (noption) apply(*Interpreter) {}

type options []InterpreterOption

func (opts options) apply(in *Interpreter) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(in)
		}
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(in *Interpreter) { in.logfn = logfn }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type memLimitOption uint
type configOption struct{ cfg InterpreterConfig }

func withInput(r io.Reader) inputOption   { return inputOption{r} }
func withOutput(w io.Writer) outputOption { return outputOption{w} }

func withInputWriter(wto io.WriterTo) pipeInput {
	r, w := io.Pipe()
	go func() {
		defer w.Close()
		wto.WriteTo(w)
	}()
	return pipeInput{r, nameOf(wto)}
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

func (i inputOption) apply(in *Interpreter) {
	in.Input.Queue = append(in.Input.Queue, i.Reader)
}

func (o outputOption) apply(in *Interpreter) {
	if in.out != nil {
		in.out.Flush()
	}
	in.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		in.closers = append(in.closers, cl)
	}
}

func (o teeOption) apply(in *Interpreter) {
	in.out = flushio.WriteFlushers(in.out, flushio.NewWriteFlusher(o.Writer))
	if cl, ok := o.Writer.(io.Closer); ok {
		in.closers = append(in.closers, cl)
	}
}

func (lim memLimitOption) apply(in *Interpreter) { in.arena.Limit = uint(lim) }

func (c configOption) apply(in *Interpreter) {
	in.cfg = c.cfg
	if c.cfg.DefaultPageSize > 0 {
		in.arena.PageSize = c.cfg.DefaultPageSize
		in.staticArena.PageSize = c.cfg.DefaultPageSize
	}
	if c.cfg.ArenaLimit > 0 {
		in.arena.Limit = c.cfg.ArenaLimit
	}
}

type pipeInput struct {
	*io.PipeReader
	name string
}

func (pi pipeInput) Name() string { return pi.name }

func (pi pipeInput) apply(in *Interpreter) {
	in.Input.Queue = append(in.Input.Queue, pi)
	in.closers = append(in.closers, pi)
}
