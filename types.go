package main

import "fmt"

// Kind is the tag of a Type.
type Kind int

const (
	KVoid Kind = iota
	KChar
	KShort
	KInt
	KLong
	KFloat
	KDouble
	KPointer
	KArray
	KStruct
	KUnion
	KEnum
	KFunc
	KTypedef
)

func (k Kind) String() string {
	switch k {
	case KVoid:
		return "void"
	case KChar:
		return "char"
	case KShort:
		return "short"
	case KInt:
		return "int"
	case KLong:
		return "long"
	case KFloat:
		return "float"
	case KDouble:
		return "double"
	case KPointer:
		return "pointer"
	case KArray:
		return "array"
	case KStruct:
		return "struct"
	case KUnion:
		return "union"
	case KEnum:
		return "enum"
	case KFunc:
		return "func"
	case KTypedef:
		return "typedef"
	default:
		return "?"
	}
}

// isInteger reports whether k is one of the integral kinds (char/short/int/
// long, plus enum which is always int-typed).
func (k Kind) isInteger() bool {
	switch k {
	case KChar, KShort, KInt, KLong, KEnum:
		return true
	}
	return false
}

func (k Kind) isFloating() bool { return k == KFloat || k == KDouble }
func (k Kind) isArithmetic() bool { return k.isInteger() || k.isFloating() }

// Field is one member of a struct or union type.
type Field struct {
	Name   Name
	Type   *Type
	Offset uint // byte offset, for sizeof/layout purposes
	Cell   uint // cell offset within the aggregate's arena span
}

// Type is an interned C type. Non-aggregate types (primitives, pointers,
// arrays of an interned element) compare equal by pointer identity once
// interned; struct/union types are interned by tag name in one table per
// tag kind shared by every scope, so the same tag declared in two scopes
// names one type.
type Type struct {
	Kind     Kind
	Unsigned bool // meaningful for integer Kinds

	Elem    *Type // KPointer, KArray, KTypedef(target use Target instead)
	Len     int   // KArray: element count; 0 is the "incomplete, size from initializer" sentinel
	Name    Name  // KStruct/KUnion/KEnum/KTypedef: the tag/alias name
	Fields  []Field
	Opaque  bool // host-registered type: size known, fields inaccessible

	Return   *Type
	Params   []*Type
	ParamNames []Name
	Variadic bool

	Target *Type // KTypedef: the type this alias resolves to; lookup never stops on the alias itself

	size      uint
	align     uint
	sizeKnown bool
}

// Resolved follows typedef aliases to their underlying type: name lookup
// returns the target, since aliases are never nominally distinct.
func (t *Type) Resolved() *Type {
	for t != nil && t.Kind == KTypedef {
		t = t.Target
	}
	return t
}

func (t *Type) String() string {
	switch t.Kind {
	case KPointer:
		return t.Elem.String() + "*"
	case KArray:
		return fmt.Sprintf("%v[%d]", t.Elem, t.Len)
	case KStruct:
		return "struct " + t.Name.String()
	case KUnion:
		return "union " + t.Name.String()
	case KEnum:
		return "enum " + t.Name.String()
	case KTypedef:
		return t.Name.String()
	default:
		if t.Unsigned && t.Kind.isInteger() {
			return "unsigned " + t.Kind.String()
		}
		return t.Kind.String()
	}
}

// String renders a Name as its numeric id ("#n"), or "<anon>" for the zero
// Name; a Name has no access to the string table holding its text.
func (n Name) String() string {
	if n == 0 {
		return "<anon>"
	}
	return fmt.Sprintf("#%d", uint(n))
}

// typeTable interns and constructs C types, and is the authority for
// sizeof/alignof.
type typeTable struct {
	strTab *stringTable

	voidT, charT, ucharT, shortT, ushortT           *Type
	intT, uintT, longT, ulongT, floatT, doubleT     *Type

	pointers map[*Type]*Type
	arrays   map[arrayKey]*Type

	structs  map[Name]*Type
	unions   map[Name]*Type
	enums    map[Name]*Type
	typedefs map[Name]*Type

	ptrSize  uint
	ptrAlign uint
}

type arrayKey struct {
	elem *Type
	n    int
}

func newTypeTable(strTab *stringTable) *typeTable {
	tt := &typeTable{
		strTab:   strTab,
		pointers: make(map[*Type]*Type),
		arrays:   make(map[arrayKey]*Type),
		structs:  make(map[Name]*Type),
		unions:   make(map[Name]*Type),
		enums:    make(map[Name]*Type),
		typedefs: make(map[Name]*Type),
		ptrSize:  8,
		ptrAlign: 8,
	}
	tt.voidT = &Type{Kind: KVoid, size: 0, align: 1, sizeKnown: true}
	tt.charT = &Type{Kind: KChar, size: 1, align: 1, sizeKnown: true}
	tt.ucharT = &Type{Kind: KChar, Unsigned: true, size: 1, align: 1, sizeKnown: true}
	tt.shortT = &Type{Kind: KShort, size: 2, align: 2, sizeKnown: true}
	tt.ushortT = &Type{Kind: KShort, Unsigned: true, size: 2, align: 2, sizeKnown: true}
	tt.intT = &Type{Kind: KInt, size: 4, align: 4, sizeKnown: true}
	tt.uintT = &Type{Kind: KInt, Unsigned: true, size: 4, align: 4, sizeKnown: true}
	tt.longT = &Type{Kind: KLong, size: 8, align: 8, sizeKnown: true}
	tt.ulongT = &Type{Kind: KLong, Unsigned: true, size: 8, align: 8, sizeKnown: true}
	tt.floatT = &Type{Kind: KFloat, size: 4, align: 4, sizeKnown: true}
	tt.doubleT = &Type{Kind: KDouble, size: 8, align: 8, sizeKnown: true}
	return tt
}

// Pointer returns the (interned) pointer-to-elem type.
func (tt *typeTable) Pointer(elem *Type) *Type {
	if p, ok := tt.pointers[elem]; ok {
		return p
	}
	p := &Type{Kind: KPointer, Elem: elem, size: tt.ptrSize, align: tt.ptrAlign, sizeKnown: true}
	tt.pointers[elem] = p
	return p
}

// Array returns the (interned) array-of-n-elem type. n == 0 is the
// "incomplete, size determined by initializer" sentinel; once an
// initializer fixes the count, call Array again with the resolved n to get
// the re-interned, sized type.
func (tt *typeTable) Array(elem *Type, n int) *Type {
	key := arrayKey{elem, n}
	if a, ok := tt.arrays[key]; ok {
		return a
	}
	a := &Type{Kind: KArray, Elem: elem, Len: n}
	if n > 0 && elem.sizeKnown {
		a.size = uint(n) * elem.size
		a.align = elem.align
		a.sizeKnown = true
	}
	tt.arrays[key] = a
	return a
}

// DeclareStruct registers (or looks up, if already declared) a struct type
// by tag name and lays out its fields in declaration order, aligning each
// field to its own alignment, and padding the aggregate size to a multiple
// of the aggregate's own alignment (the max of its fields').
func (tt *typeTable) DeclareStruct(name Name, fields []Field) *Type {
	return tt.declareAggregate(tt.structs, KStruct, name, fields, false)
}

// DeclareUnion registers a union type: all fields overlap at offset 0, and
// the aggregate size is max(sizeof(field)) padded to max(alignof(field)).
func (tt *typeTable) DeclareUnion(name Name, fields []Field) *Type {
	return tt.declareAggregate(tt.unions, KUnion, name, fields, true)
}

func (tt *typeTable) declareAggregate(table map[Name]*Type, kind Kind, name Name, fields []Field, overlap bool) *Type {
	t, existing := table[name]
	if !existing {
		t = &Type{Kind: kind, Name: name}
		if name != 0 {
			table[name] = t
		}
	}
	if fields == nil {
		return t // forward declaration / lookup of an already-complete tag
	}

	var maxAlign uint
	var offset, cellOffset uint
	laidOut := make([]Field, len(fields))
	for i, f := range fields {
		fa := f.Type.Alignof()
		if overlap {
			offset, cellOffset = 0, 0
		} else {
			offset = alignUp(offset, fa)
		}
		laidOut[i] = Field{Name: f.Name, Type: f.Type, Offset: offset, Cell: cellOffset}
		if !overlap {
			offset += f.Type.Sizeof()
			cellOffset += f.Type.CellSize()
		}
		if fa > maxAlign {
			maxAlign = fa
		}
	}
	var size uint
	if overlap {
		for _, f := range laidOut {
			if sz := f.Type.Sizeof(); sz > size {
				size = sz
			}
		}
	} else {
		size = offset
	}
	if maxAlign == 0 {
		maxAlign = 1
	}
	size = alignUp(size, maxAlign)

	t.Fields = laidOut
	t.align = maxAlign
	t.size = size
	t.sizeKnown = true
	return t
}

// DeclareOpaque registers a host type known only by name and byte size: the
// interpreter may take its address and pass it through but never accesses
// fields (used for e.g. FILE, struct tm).
func (tt *typeTable) DeclareOpaque(name Name, size, align uint) *Type {
	t := &Type{Kind: KStruct, Name: name, Opaque: true, size: size, align: align, sizeKnown: true}
	tt.structs[name] = t
	return t
}

// DeclareEnum registers an enum tag; its underlying type is always int.
func (tt *typeTable) DeclareEnum(name Name) *Type {
	if t, ok := tt.enums[name]; ok {
		return t
	}
	t := &Type{Kind: KEnum, Name: name, size: 4, align: 4, sizeKnown: true}
	if name != 0 {
		tt.enums[name] = t
	}
	return t
}

// DeclareTypedef registers name as an alias resolving to target.
func (tt *typeTable) DeclareTypedef(name Name, target *Type) *Type {
	t := &Type{Kind: KTypedef, Name: name, Target: target}
	tt.typedefs[name] = t
	return t
}

func (tt *typeTable) LookupTypedef(name Name) (*Type, bool) {
	t, ok := tt.typedefs[name]
	return t, ok
}

func (tt *typeTable) LookupStruct(name Name) (*Type, bool) { t, ok := tt.structs[name]; return t, ok }
func (tt *typeTable) LookupUnion(name Name) (*Type, bool)  { t, ok := tt.unions[name]; return t, ok }
func (tt *typeTable) LookupEnum(name Name) (*Type, bool)   { t, ok := tt.enums[name]; return t, ok }

func alignUp(offset, align uint) uint {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// Sizeof returns t's size in bytes; constant once t is interned.
func (t *Type) Sizeof() uint {
	if t.Kind == KFunc {
		return 0
	}
	return t.size
}

// CellSize returns how many arena Cells t occupies. Unlike Sizeof, the
// C-visible byte count the sizeof operator and struct layout math need,
// the arena itself is word-addressed -- one Cell holds exactly one scalar
// leaf value, storing memory as a flat slice of tagged cells rather than
// raw bytes. Pointer arithmetic at the arena level advances by whole
// elements' CellSize, which is shape-for-shape identical to byte
// arithmetic for the usual pointer-arithmetic identities (a[i] ==
// *(a+i), sizeof(T[N]) == N*sizeof(T)) since both sides scale by the
// same T consistently; only raw cross-type byte reinterpretation (not
// exercised by this subset) would ever observe the difference.
func (t *Type) CellSize() uint {
	switch t.Kind {
	case KVoid, KFunc:
		return 0
	case KArray:
		return uint(t.Len) * t.Elem.CellSize()
	case KStruct, KUnion:
		if t.Opaque {
			return 1
		}
		var n uint
		if t.Kind == KUnion {
			for _, f := range t.Fields {
				if fc := f.Type.CellSize(); fc > n {
					n = fc
				}
			}
			if n == 0 {
				n = 1
			}
			return n
		}
		for _, f := range t.Fields {
			n += f.Type.CellSize()
		}
		if n == 0 {
			n = 1
		}
		return n
	case KTypedef:
		return t.Target.CellSize()
	default:
		return 1
	}
}

// Alignof returns t's required alignment in bytes.
func (t *Type) Alignof() uint {
	if t.align == 0 {
		return 1
	}
	return t.align
}

// IsComplete reports whether t's layout is fully known (an elided array
// size, `int x[]`, is incomplete until an initializer fixes its length).
func (t *Type) IsComplete() bool { return t.sizeKnown }

// FieldByName looks up a struct/union field by name, returning its offset.
func (t *Type) FieldByName(name Name) (Field, bool) {
	for _, f := range t.Resolved().Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
