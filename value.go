package main

import (
	"fmt"

	"github.com/dcorbin/minic/internal/valuearena"
)

// FuncDescriptor describes a callable: exactly one of BodyPos or Native
// is meaningful, distinguishing an interpreted function from a host one.
type FuncDescriptor struct {
	Name       Name
	Return     *Type
	ParamTypes []*Type
	ParamNames []Name
	Variadic   bool

	BodyPos int // Lexer token-stream index of the function body's '{'
	Native  NativeFunc
}

// NativeFunc is a host thunk installed via RegisterNativeFunc. args have
// already been converted to the function's declared parameter types; the
// return Value's Type must match Return (or be Void).
type NativeFunc func(in *Interpreter, args []Value) (Value, error)

// MacroDescriptor is a #define'd macro: object-like macros have a nil
// Params; function-like macros re-enter the parser with Params bound as a
// shadow scope over the body token range (kept as a [start,end) span, never
// lowered to a function). Each argument is evaluated once and bound by
// value; it is not substituted into the body as text.
type MacroDescriptor struct {
	Params   []Name
	Start    int
	End      int
	IsObject bool
}

// Value pairs a Type with storage. An lvalue carries an arena address;
// an rvalue's scalar payload lives in I/F/Str directly.
// Values never own storage that outlives their frame/scope -- an array
// element or struct field Value simply shares its parent's Addr plus a
// Cell offset.
type Value struct {
	Type *Type

	Addr     uint
	IsLValue bool
	Static   bool // Addr is in the Interpreter's static arena, not the frame arena

	I   int64
	F   float64
	Str Name // interned string this value denotes, for string-literal rvalues

	Func  *FuncDescriptor
	Macro *MacroDescriptor
}

func intValue(t *Type, i int64) Value   { return Value{Type: t, I: i} }
func floatValue(t *Type, f float64) Value { return Value{Type: t, F: f} }

func lvalue(t *Type, addr uint) Value { return Value{Type: t, Addr: addr, IsLValue: true} }

// variableValue builds the lvalue a Scope lookup resolves to.
func variableValue(v *Variable) Value {
	return Value{Type: v.Type, Addr: v.Addr, IsLValue: true, Static: v.Static}
}

// arenaFor returns the arena backing an lvalue: the per-call frame arena
// for ordinary locals and globals, or the static region for `static`
// locals, which must outlive their declaring scope.
func (in *Interpreter) arenaFor(v Value) *valuearena.Core {
	if v.Static {
		return &in.staticArena
	}
	return &in.arena
}

// scalarLoad reads an lvalue scalar's current value out of the arena,
// returning an rvalue copy; for an rvalue it simply strips the lvalue flag
// (it already holds its value).
func (in *Interpreter) scalarLoad(v Value) (Value, error) {
	if !v.IsLValue {
		return v, nil
	}
	rt := v.Type.Resolved()
	cell, err := in.arenaFor(v).Load(v.Addr)
	if err != nil {
		return Value{}, err
	}
	out := Value{Type: v.Type}
	if rt.Kind.isFloating() {
		out.F = cell.F
	} else {
		out.I = cell.I
		if rt.Kind == KChar {
			if rt.Unsigned {
				out.I = int64(uint8(out.I))
			} else {
				out.I = int64(int8(out.I))
			}
		} else if rt.Kind == KShort {
			if rt.Unsigned {
				out.I = int64(uint16(out.I))
			} else {
				out.I = int64(int16(out.I))
			}
		} else if rt.Kind == KInt && rt.Unsigned {
			out.I = int64(uint32(out.I))
		} else if rt.Kind == KInt {
			out.I = int64(int32(out.I))
		}
	}
	return out, nil
}

// scalarStore writes val's scalar payload into dst's arena cell. dst must
// be an lvalue.
func (in *Interpreter) scalarStore(dst Value, val Value) error {
	if !dst.IsLValue {
		return RuntimeError{Kind: "assign", Message: "assignment target is not an lvalue"}
	}
	conv := in.convert(val, dst.Type)
	rt := dst.Type.Resolved()
	cell := valuearena.Cell{}
	if rt.Kind.isFloating() {
		cell.F, cell.IsF = conv.F, true
	} else {
		cell.I = conv.I
	}
	return in.arenaFor(dst).Store(dst.Addr, cell)
}

// aggregateAssign copies a struct/union/array value cell-for-cell, the
// arena's analogue of C's whole-aggregate assignment semantics (copy by
// value, not by reference). Neither this function nor its callers check
// that src has dst's type: dst's CellSize cells are copied from src.Addr
// whatever src's type is.
func (in *Interpreter) aggregateAssign(dst, src Value) error {
	if !dst.IsLValue {
		return RuntimeError{Kind: "assign", Message: "assignment target is not an lvalue"}
	}
	if !src.IsLValue {
		return RuntimeError{Kind: "assign", Message: "aggregate rvalue has no storage to copy from"}
	}
	n := dst.Type.Resolved().CellSize()
	srcArena, dstArena := in.arenaFor(src), in.arenaFor(dst)
	for i := uint(0); i < n; i++ {
		cell, err := srcArena.Load(src.Addr + i)
		if err != nil {
			return err
		}
		if err := dstArena.Store(dst.Addr+i, cell); err != nil {
			return err
		}
	}
	return nil
}

// convert applies C's implicit conversion rules to coerce val to target:
// integer<->float per the usual arithmetic conversions, and narrowing casts
// truncate the way scalarLoad's re-widening already assumes.
func (in *Interpreter) convert(val Value, target *Type) Value {
	rt := target.Resolved()
	if rt.Kind.isFloating() {
		if val.Type.Resolved().Kind.isFloating() {
			return Value{Type: target, F: val.F}
		}
		return Value{Type: target, F: float64(val.I)}
	}
	if val.Type.Resolved().Kind.isFloating() {
		return Value{Type: target, I: int64(val.F)}
	}
	return Value{Type: target, I: val.I}
}

// promote applies integer promotion: any type narrower than int promotes to
// int.
func (in *Interpreter) promote(v Value) Value {
	rt := v.Type.Resolved()
	if rt.Kind == KChar || rt.Kind == KShort {
		return Value{Type: in.types.intT, I: v.I}
	}
	return v
}

// usualArith applies the usual arithmetic conversions for a mixed binary
// operator: both operands promoted, then the "wider wins, float wins over
// int, unsigned wins over signed of the same width" ladder.
func (in *Interpreter) usualArith(a, b Value) (*Type, Value, Value) {
	a, b = in.promote(a), in.promote(b)
	ar, br := a.Type.Resolved(), b.Type.Resolved()

	rank := func(t *Type) int {
		switch t.Kind {
		case KDouble:
			return 5
		case KFloat:
			return 4
		case KLong:
			return 3
		case KInt:
			return 2
		default:
			return 1
		}
	}
	target := a.Type
	if rank(br) > rank(ar) {
		target = b.Type
	} else if rank(br) == rank(ar) && br.Unsigned && !ar.Unsigned {
		target = b.Type
	}
	return target, in.convert(a, target), in.convert(b, target)
}

// decay implements array->pointer and function->pointer decay in rvalue
// contexts, skipped for sizeof and & operands.
func (in *Interpreter) decay(v Value) Value {
	rt := v.Type.Resolved()
	switch rt.Kind {
	case KArray:
		if !v.IsLValue {
			return v
		}
		return Value{Type: in.types.Pointer(rt.Elem), I: int64(v.Addr), Addr: v.Addr}
	case KFunc:
		return Value{Type: in.types.Pointer(v.Type), Func: v.Func}
	default:
		return v
	}
}

// RuntimeError is a fatal runtime condition: type mismatch, bad cast,
// wrong arity, undefined identifier at use, divide by zero, stack
// overflow, and so on.
type RuntimeError struct {
	Kind    string
	Message string
}

func (e RuntimeError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
