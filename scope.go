package main

import "github.com/dcorbin/minic/internal/valuearena"

// Scope is one lexical block: function body, compound statement, or the
// global scope. Scopes nest through Parent and carry a unique, increasing
// ID (0 for the global scope), which keys the static locals declared in
// them.
type Scope struct {
	id     uint
	Parent *Scope
	vars   map[Name]*Variable
	mark   uint // arena high-water mark to Release back to on scope exit
}

// Variable is one declared name's binding: its Type and where its value
// lives. A static local's Addr points into the Interpreter's static arena
// region, allocated once at first declaration and never released; all
// other Variables point into the current frame's span and are reclaimed
// when their Scope or frame exits.
type Variable struct {
	Type   *Type
	Addr   uint
	Static bool
}

// frame is one function call's activation record: the Scope chain rooted
// at its parameter scope, plus the arena span that Return unwinds by
// releasing.
type frame struct {
	fn       *FuncDescriptor
	scope    *Scope
	mark     uint
	retAddr  uint
	retType  *Type
	hasValue bool
	retValue Value
}

var nextScopeID uint = 1

// newScope opens a nested scope under parent, recording the arena's
// current high-water mark so Release can unwind exactly what this scope
// allocates.
func (in *Interpreter) newScope(parent *Scope) *Scope {
	s := &Scope{id: nextScopeID, Parent: parent, vars: make(map[Name]*Variable), mark: in.arena.Mark()}
	nextScopeID++
	return s
}

// closeScope releases every cell this scope (and anything it allocated
// after opening) reserved. Scopes must close in LIFO order, matching the
// arena's own LIFO discipline.
func (in *Interpreter) closeScope(s *Scope) {
	in.arena.Release(s.mark)
}

// declare binds name to a fresh Variable of type t in scope s, allocating
// CellSize() cells for it. If name is already bound in s, the existing
// Variable is returned unchanged instead of reallocating: a backward goto
// that re-enters a function body re-runs its declarations, and those
// re-runs must find the same storage rather than resetting it.
func (in *Interpreter) declare(s *Scope, name Name, t *Type) (*Variable, error) {
	if v, ok := s.vars[name]; ok {
		return v, nil
	}
	n := t.CellSize()
	if n == 0 {
		n = 1
	}
	addr := in.arena.Mark()
	if err := in.arena.Store(addr, make([]valuearena.Cell, n)...); err != nil {
		return nil, err
	}
	v := &Variable{Type: t, Addr: addr}
	s.vars[name] = v
	return v, nil
}

// declareStatic binds name to a Variable backed by the Interpreter's
// static region: storage that survives scope exit and is initialized only
// the first time control reaches the declaration, per the "static locals"
// edge case.
func (in *Interpreter) declareStatic(s *Scope, name Name, t *Type) (*Variable, bool, error) {
	if v, ok := in.statics[staticKey{scope: s.id, name: name}]; ok {
		s.vars[name] = v
		return v, false, nil
	}
	n := t.CellSize()
	if n == 0 {
		n = 1
	}
	addr := in.staticArena.Mark()
	if err := in.staticArena.Store(addr, make([]valuearena.Cell, n)...); err != nil {
		return nil, false, err
	}
	v := &Variable{Type: t, Addr: addr, Static: true}
	if in.statics == nil {
		in.statics = make(map[staticKey]*Variable)
	}
	in.statics[staticKey{scope: s.id, name: name}] = v
	s.vars[name] = v
	return v, true, nil
}

type staticKey struct {
	scope uint
	name  Name
}

// lookup walks s and its ancestors for name, the lexical scoping rule that
// lets an inner block shadow an outer declaration.
func (s *Scope) lookup(name Name) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// currentScope returns the innermost active scope: the top frame's scope
// if a call is in progress, otherwise the global scope.
func (in *Interpreter) currentScope() *Scope {
	if len(in.frames) > 0 {
		return in.frames[len(in.frames)-1].scope
	}
	return in.global
}

func (in *Interpreter) pushFrame(f *frame) {
	in.frames = append(in.frames, f)
}

// frameTrace renders the current call-frame stack, innermost first, for
// -dump diagnostics; frames are left in place after a halt panic since
// call's own cleanup runs only on the normal-return path, so this reflects
// exactly the calls active when the fatal error was raised.
func (in *Interpreter) frameTrace() []string {
	trace := make([]string, 0, len(in.frames))
	for i := len(in.frames) - 1; i >= 0; i-- {
		f := in.frames[i]
		name := "<native>"
		if f.fn != nil {
			name = in.strTab.text(f.fn.Name)
		}
		trace = append(trace, name)
	}
	return trace
}

func (in *Interpreter) popFrame() *frame {
	f := in.frames[len(in.frames)-1]
	in.frames = in.frames[:len(in.frames)-1]
	in.closeScope(f.scope)
	return f
}
