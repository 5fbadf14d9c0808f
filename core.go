package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dcorbin/minic/internal/fileinput"
	"github.com/dcorbin/minic/internal/flushio"
	"github.com/dcorbin/minic/internal/runeio"
	"github.com/dcorbin/minic/internal/valuearena"
)

// Interpreter is the embeddable C-subset interpreter described in the
// package doc. It owns exactly one lexer cursor, one value arena, and one
// execution mode at a time: it is a purely sequential, single-threaded
// evaluator. A host function may call back into it (nesting frames on the
// arena) but must not do so from another goroutine.
type Interpreter struct {
	logging
	fileinput.Input

	arena       valuearena.Core
	staticArena valuearena.Core
	statics     map[staticKey]*Variable

	strTab stringTable
	types  *typeTable
	global *Scope
	frames []*frame

	mode     mode
	modeData modeData

	includes map[string]*IncludeDef
	platform map[string]*platformVar

	funcs  map[Name]*FuncDescriptor
	macros map[Name]*MacroDescriptor
	seen   map[string]bool // include guard: file paths already processed

	lx *Lexer // the translation unit's token stream; function bodies seek back into it to re-run on each call

	cfg InterpreterConfig

	out     flushio.WriteFlusher
	closers []io.Closer
}

// Close releases any closer registered by an input or output option (e.g. an
// opened file, or a piped input writer), in reverse registration order.
func (in *Interpreter) Close() (err error) {
	for i := len(in.closers) - 1; i >= 0; i-- {
		if cerr := in.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// halt unwinds to the Interpreter's single abort path: flush any pending
// output, log the failure if tracing, then panic with a haltError. Block
// scopes and macro shadow scopes release their arena spans through
// deferred closeScope calls as the panic unwinds; call pops its frame and
// releases the function scope only on its return path, so every frame
// active at the halt stays on in.frames (where frameTrace reports it) and
// its arena span is not released.
func (in *Interpreter) halt(err error) {
	func() {
		defer func() { recover() }() // a flush failure must not mask err
		if in.out != nil {
			if ferr := in.out.Flush(); err == nil {
				err = ferr
			}
		}
	}()

	func() {
		defer func() { recover() }()
		in.logf("#", "halt: %v", err)
	}()

	panic(haltError{err})
}

func (in *Interpreter) haltif(err error) {
	if err != nil {
		in.halt(err)
	}
}

// haltError is the sentinel panic value carried from halt up to Run's
// recover point; Unwrap lets errors.As/errors.Is see through it to the
// wrapped ParseError, RuntimeError, or exitError.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("interpreter halted: %v", err.error)
	}
	return "interpreter halted"
}
func (err haltError) Unwrap() error { return err.error }

// exitError is what `exit(n)` inside interpreted code halts with: a
// successful termination with code n, not a runtime error -- Run treats
// it specially rather than surfacing it as a failure.
type exitError struct{ code int }

func (err exitError) Error() string { return fmt.Sprintf("exit(%d)", err.code) }

func (in *Interpreter) writeRune(r rune) {
	if _, err := runeio.WriteANSIRune(in.out, r); err != nil {
		in.halt(err)
	}
}

func (in *Interpreter) writeString(s string) {
	if _, err := runeio.WriteANSIString(in.out, s); err != nil {
		in.halt(err)
	}
}

// readRune blocks for one rune of input, flushing pending output first so
// an interactive prompt is visible before the host blocks waiting for a
// reply. Zero runes marking a switch between queued streams are skipped;
// at the end of input it returns the stream's error (io.EOF) without
// halting, which getchar reports as -1.
func (in *Interpreter) readRune() (rune, error) {
	if err := in.out.Flush(); err != nil {
		in.halt(err)
	}
	r, _, err := in.Input.ReadRune()
	for r == 0 {
		if err != nil {
			return 0, err
		}
		r, _, err = in.Input.ReadRune()
	}
	return r, nil
}

// logging implements leveled trace output with an aligned mark column, so a
// -trace log reads as neat columns of (location, event) rather than ragged
// prose.
type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
