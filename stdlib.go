package main

import (
	"fmt"
	"math"
	"time"
)

// installStdlib registers the subset of the standard C library this
// interpreter ships as host functions: stdio.h's print/read primitives,
// string.h's buffer helpers, math.h's transcendental functions, and a
// time.h shim recovered from picoc-arduino's platform library
// (CLOCKS_PER_SEC / clock() / time()), none of which exist as
// interpretable C source -- they are native thunks wired in at startup.
func (in *Interpreter) installStdlib() {
	charT := in.types.charT
	intT := in.types.intT
	longT := in.types.longT
	doubleT := in.types.doubleT
	voidT := in.types.voidT
	charPtr := in.types.Pointer(charT)

	in.RegisterNativeFunc("putchar", intT, []*Type{intT}, false, func(in *Interpreter, args []Value) (Value, error) {
		in.writeRune(rune(args[0].I))
		return intValue(intT, args[0].I), nil
	})
	in.RegisterNativeFunc("puts", intT, []*Type{charPtr}, false, func(in *Interpreter, args []Value) (Value, error) {
		in.writeString(in.readCString(args[0]))
		in.writeRune('\n')
		return intValue(intT, 0), nil
	})
	in.RegisterNativeFunc("printf", intT, []*Type{charPtr}, true, func(in *Interpreter, args []Value) (Value, error) {
		n, err := in.hostPrintf(args)
		return intValue(intT, int64(n)), err
	})
	in.RegisterNativeFunc("getchar", intT, nil, false, func(in *Interpreter, args []Value) (Value, error) {
		r, err := in.readRune()
		if err != nil {
			return intValue(intT, -1), nil
		}
		return intValue(intT, int64(r)), nil
	})

	in.RegisterNativeFunc("strlen", longT, []*Type{charPtr}, false, func(in *Interpreter, args []Value) (Value, error) {
		return intValue(longT, int64(len(in.readCString(args[0])))), nil
	})
	in.RegisterNativeFunc("strcpy", charPtr, []*Type{charPtr, charPtr}, false, func(in *Interpreter, args []Value) (Value, error) {
		text := in.readCString(args[1])
		if err := in.storeCharArray(lvalue(charT, uint(args[0].I)), text); err != nil {
			return Value{}, err
		}
		return args[0], nil
	})
	in.RegisterNativeFunc("strcmp", intT, []*Type{charPtr, charPtr}, false, func(in *Interpreter, args []Value) (Value, error) {
		a, b := in.readCString(args[0]), in.readCString(args[1])
		switch {
		case a < b:
			return intValue(intT, -1), nil
		case a > b:
			return intValue(intT, 1), nil
		default:
			return intValue(intT, 0), nil
		}
	})

	in.RegisterNativeFunc("sqrt", doubleT, []*Type{doubleT}, false, mathFn1(math.Sqrt, doubleT))
	in.RegisterNativeFunc("pow", doubleT, []*Type{doubleT, doubleT}, false, func(in *Interpreter, args []Value) (Value, error) {
		return floatValue(doubleT, math.Pow(args[0].F, args[1].F)), nil
	})
	in.RegisterNativeFunc("fabs", doubleT, []*Type{doubleT}, false, mathFn1(math.Abs, doubleT))
	in.RegisterNativeFunc("floor", doubleT, []*Type{doubleT}, false, mathFn1(math.Floor, doubleT))
	in.RegisterNativeFunc("ceil", doubleT, []*Type{doubleT}, false, mathFn1(math.Ceil, doubleT))

	// CLOCKS_PER_SEC / clock() / time() recover the original
	// picoc-arduino platform shim: CLOCKS_PER_SEC as a plain macro, clock()
	// returning process-relative ticks, time() returning a Unix timestamp.
	in.RegisterInclude("time.h", "#define CLOCKS_PER_SEC 1000000\n")
	startTime := time.Now()
	in.RegisterNativeFunc("clock", longT, nil, false, func(in *Interpreter, args []Value) (Value, error) {
		return intValue(longT, int64(time.Since(startTime)/time.Microsecond)), nil
	})
	in.RegisterNativeFunc("time", longT, []*Type{in.types.Pointer(longT)}, false, func(in *Interpreter, args []Value) (Value, error) {
		now := time.Now().Unix()
		if args[0].I != 0 {
			if err := in.scalarStore(lvalue(longT, uint(args[0].I)), intValue(longT, now)); err != nil {
				return Value{}, err
			}
		}
		return intValue(longT, now), nil
	})

	in.RegisterNativeFunc("exit", voidT, []*Type{intT}, false, func(in *Interpreter, args []Value) (Value, error) {
		in.halt(exitError{code: int(args[0].I)})
		return Value{}, nil
	})
}

func mathFn1(f func(float64) float64, t *Type) NativeFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		return floatValue(t, f(args[0].F)), nil
	}
}

// readCString reads a NUL-terminated byte run out of the arena starting
// at v's address, the representation every char* the interpreted program
// hands to a host function uses.
func (in *Interpreter) readCString(v Value) string {
	var buf []byte
	addr := uint(v.I)
	for i := 0; i < 1<<20; i++ {
		cell, err := in.arena.Load(addr + uint(i))
		if err != nil || byte(cell.I) == 0 {
			break
		}
		buf = append(buf, byte(cell.I))
	}
	return string(buf)
}

// hostPrintf implements a pragmatic subset of printf's conversions
// (%d %u %ld %x %c %s %f %%) against already-evaluated, promoted
// varargs, sufficient for the programs this interpreter targets without
// reimplementing the whole C format-string grammar.
func (in *Interpreter) hostPrintf(args []Value) (int, error) {
	format := in.readCString(args[0])
	rest := args[1:]
	var out []byte
	ai := 0
	next := func() Value {
		if ai < len(rest) {
			v := rest[ai]
			ai++
			return v
		}
		return Value{}
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			out = append(out, c)
			continue
		}
		i++
		switch format[i] {
		case '%':
			out = append(out, '%')
		case 'd', 'i':
			out = append(out, []byte(fmt.Sprintf("%d", next().I))...)
		case 'u':
			out = append(out, []byte(fmt.Sprintf("%d", uint64(next().I)))...)
		case 'l':
			if i+1 < len(format) && format[i+1] == 'd' {
				i++
				out = append(out, []byte(fmt.Sprintf("%d", next().I))...)
			}
		case 'x':
			out = append(out, []byte(fmt.Sprintf("%x", next().I))...)
		case 'c':
			out = append(out, byte(next().I))
		case 's':
			out = append(out, []byte(in.readCString(next()))...)
		case 'f':
			out = append(out, []byte(fmt.Sprintf("%f", next().F))...)
		default:
			out = append(out, '%', format[i])
		}
	}
	in.writeString(string(out))
	return len(out), nil
}
