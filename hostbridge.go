package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dcorbin/minic/internal/valuearena"
)

// IncludeDef is one header registered through RegisterInclude. A header
// read from the configured search paths is parsed directly by execInclude
// without an IncludeDef, so nothing in this package sets Path.
type IncludeDef struct {
	Name   string
	Source string // raw C source, parsed in place of a file body
	Path   string // resolved filesystem path, when not Source-backed
}

// platformVar is a host-registered global the interpreted program can
// read and (if Writable) assign, the "platform variable" half of the Host
// Bridge alongside native functions.
type platformVar struct {
	Type     *Type
	Addr     uint
	Writable bool
}

// RegisterInclude installs a named header whose body is the given raw C
// source, so `#include <name>` or `#include "name"` expands it in place
// without touching the filesystem. This is how a host exposes a synthetic
// standard header (installStdlib registers time.h this way; the stdio,
// string and math functions are native functions needing no header)
// without shipping real files.
func (in *Interpreter) RegisterInclude(name, source string) {
	if in.includes == nil {
		in.includes = make(map[string]*IncludeDef)
	}
	in.includes[name] = &IncludeDef{Name: name, Source: source}
}

// RegisterPlatformVar exposes a host-owned global of the given type under
// name, allocated in the static arena so its storage is stable across the
// whole Interpreter lifetime.
func (in *Interpreter) RegisterPlatformVar(name string, t *Type, writable bool) error {
	n := t.CellSize()
	if n == 0 {
		n = 1
	}
	addr := in.staticArena.Mark()
	if err := in.staticArena.Store(addr, make([]valuearena.Cell, n)...); err != nil {
		return err
	}
	if in.platform == nil {
		in.platform = make(map[string]*platformVar)
	}
	nm := in.strTab.intern(name)
	in.platform[name] = &platformVar{Type: t, Addr: addr, Writable: writable}
	v := &Variable{Type: t, Addr: addr, Static: true}
	in.global.vars[nm] = v
	return nil
}

// RegisterNativeFunc installs a Go function as a callable C function
// under name, with the given declared signature; it is the Host Bridge's
// other half, the native-thunk counterpart to RegisterPlatformVar.
func (in *Interpreter) RegisterNativeFunc(name string, ret *Type, params []*Type, variadic bool, fn NativeFunc) {
	if in.funcs == nil {
		in.funcs = make(map[Name]*FuncDescriptor)
	}
	nm := in.strTab.intern(name)
	in.funcs[nm] = &FuncDescriptor{Name: nm, Return: ret, ParamTypes: params, Variadic: variadic, Native: fn}
}

// execInclude resolves a #include directive against the registered
// includes first (so a host-shimmed header always wins), then against the
// configured filesystem search paths when AllowFileInclude permits it. A
// per-Interpreter `seen` set gives each header file the same
// double-inclusion guard classic C headers implement with an #ifndef
// sentinel, except enforced by the engine instead of generated macros.
func (in *Interpreter) execInclude(p *parser) error {
	p.lx.Next() // "#include"
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	raw := in.strTab.text(tok.Text)
	if tok.Tag == TokString {
		raw = in.strTab.text(tok.Str)
	} else if tok.Tag == TokPunct && raw == "<" {
		raw = ""
		for !in.peekIs(p, ">") {
			t, err := p.lx.Next()
			if err != nil {
				return err
			}
			if t.Tag == TokEOF {
				return in.errAt(t, "unterminated #include <...>")
			}
			raw += in.strTab.text(t.Text)
		}
		p.lx.Next() // ">"
	}

	if in.mode != modeRun {
		return nil
	}

	if in.seen == nil {
		in.seen = make(map[string]bool)
	}
	if in.seen[raw] {
		return nil
	}

	if def, ok := in.includes[raw]; ok {
		in.seen[raw] = true
		return in.parseSource(def.Name, def.Source)
	}

	if !in.cfg.AllowFileInclude {
		return in.errAt(tok, "include %q not found and file includes are disabled", raw)
	}
	for _, dir := range in.cfg.IncludePaths {
		path := filepath.Join(dir, raw)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		in.seen[raw] = true
		return in.parseSource(path, string(data))
	}
	return in.errAt(tok, "include %q not found on any search path", raw)
}

// call dispatches a function Value: native functions run their Go thunk
// directly; interpreted functions push a frame, bind parameters in a
// fresh scope, and run the body statement, letting modeReturn propagate
// the result back out.
func (in *Interpreter) call(p *parser, fnVal Value, args []Value) (Value, error) {
	fn := fnVal.Func
	if fn == nil {
		return Value{}, RuntimeError{Kind: "call", Message: "not callable"}
	}
	if !fn.Variadic && len(args) != len(fn.ParamTypes) {
		return Value{}, RuntimeError{Kind: "call", Message: fmt.Sprintf("expected %d arguments, got %d", len(fn.ParamTypes), len(args))}
	}

	if fn.Native != nil {
		conv := make([]Value, len(args))
		for i, a := range args {
			if i < len(fn.ParamTypes) {
				conv[i] = in.convert(a, fn.ParamTypes[i])
			} else {
				conv[i] = a
			}
		}
		return fn.Native(in, conv)
	}

	callerPos := p.lx.Pos()
	f := &frame{fn: fn, retType: fn.Return}
	f.scope = in.newScope(in.global)
	f.mark = f.scope.mark

	for i, pn := range fn.ParamNames {
		pt := fn.ParamTypes[i]
		v, err := in.declare(f.scope, pn, pt)
		if err != nil {
			return Value{}, err
		}
		dst := variableValue(v)
		if rk := pt.Resolved().Kind; rk == KStruct || rk == KUnion {
			if i < len(args) {
				if err := in.aggregateAssign(dst, args[i]); err != nil {
					return Value{}, err
				}
			}
			continue
		}
		var av Value
		if i < len(args) {
			av = in.convert(args[i], pt)
		}
		if err := in.scalarStore(dst, av); err != nil {
			return Value{}, err
		}
	}

	in.pushFrame(f)
	p.lx.Seek(fn.BodyPos)
	savedMode := in.mode
	in.mode = modeRun

	err := in.expect(p, TokPunct, "{")
	bodyStart := p.lx.Pos()
	for err == nil {
		err = in.runBlockBody(p, f.scope)
		if err != nil || in.mode != modeGoto {
			break
		}
		// The label is behind the cursor: rescan the whole body against
		// the same scope so already-declared locals keep their storage.
		p.lx.Seek(bodyStart)
	}
	result := f.retValue
	hasValue := f.hasValue
	in.frames = in.frames[:len(in.frames)-1]
	in.closeScope(f.scope)
	if in.mode == modeReturn {
		in.mode = modeRun
	}
	if savedMode != modeRun {
		in.mode = savedMode
	}
	p.lx.Seek(callerPos)
	if err != nil {
		return Value{}, err
	}
	if !hasValue {
		return Value{Type: in.types.voidT}, nil
	}
	return result, nil
}
