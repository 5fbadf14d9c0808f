package main

// parseTypeSpec parses the base type of a declaration: builtin keywords,
// a struct/union/enum tag (with optional inline body), or a typedef name.
// Declarator suffixes (*, [], function parameters) are handled separately
// by parseDeclarator so the two compose for multi-declarator statements
// like `int *a, b[4];`.
func (in *Interpreter) parseTypeSpec(p *parser, s *Scope) (*Type, error) {
	unsigned := false
	longCount := 0
	var kind Kind = -1

	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Tag != TokKeyword {
			break
		}
		switch in.strTab.text(tok.Text) {
		case "const", "volatile":
			p.lx.Next()
			continue
		case "unsigned":
			p.lx.Next()
			unsigned = true
			continue
		case "signed":
			p.lx.Next()
			continue
		case "long":
			p.lx.Next()
			longCount++
			continue
		case "short":
			p.lx.Next()
			kind = KShort
			continue
		case "void":
			p.lx.Next()
			kind = KVoid
		case "char":
			p.lx.Next()
			kind = KChar
		case "int":
			p.lx.Next()
			if kind == -1 {
				kind = KInt
			}
		case "float":
			p.lx.Next()
			kind = KFloat
		case "double":
			p.lx.Next()
			kind = KDouble
		case "struct":
			return in.parseAggregate(p, s, false)
		case "union":
			return in.parseAggregate(p, s, true)
		case "enum":
			return in.parseEnum(p, s)
		}
		break
	}

	if kind == -1 && (unsigned || longCount > 0) {
		kind = KInt
	}
	if kind == -1 {
		tok, err := p.lx.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Tag == TokIdent {
			if t, ok := in.types.LookupTypedef(tok.Text); ok {
				p.lx.Next()
				return t, nil
			}
		}
		return nil, in.errAt(tok, "expected a type specifier")
	}

	switch kind {
	case KVoid:
		return in.types.voidT, nil
	case KChar:
		if unsigned {
			return in.types.ucharT, nil
		}
		return in.types.charT, nil
	case KShort:
		if unsigned {
			return in.types.ushortT, nil
		}
		return in.types.shortT, nil
	case KFloat:
		return in.types.floatT, nil
	case KDouble:
		return in.types.doubleT, nil
	default:
		if longCount > 0 {
			if unsigned {
				return in.types.ulongT, nil
			}
			return in.types.longT, nil
		}
		if unsigned {
			return in.types.uintT, nil
		}
		return in.types.intT, nil
	}
}

func (in *Interpreter) parseAggregate(p *parser, s *Scope, union bool) (*Type, error) {
	p.lx.Next() // "struct" | "union"
	var name Name
	tok, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Tag == TokIdent {
		name = tok.Text
		p.lx.Next()
	}

	if !in.peekIs(p, "{") {
		if union {
			if t, ok := in.types.LookupUnion(name); ok {
				return t, nil
			}
			return in.types.DeclareUnion(name, nil), nil
		}
		if t, ok := in.types.LookupStruct(name); ok {
			return t, nil
		}
		return in.types.DeclareStruct(name, nil), nil
	}

	p.lx.Next() // "{"
	var fields []Field
	for !in.peekIs(p, "}") {
		ft, err := in.parseTypeSpec(p, s)
		if err != nil {
			return nil, err
		}
		for {
			fname, derived, err := in.parseDeclarator(p, s, ft)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: fname, Type: derived})
			if in.peekIs(p, ",") {
				p.lx.Next()
				continue
			}
			break
		}
		if err := in.expect(p, TokPunct, ";"); err != nil {
			return nil, err
		}
	}
	p.lx.Next() // "}"

	if union {
		return in.types.DeclareUnion(name, fields), nil
	}
	return in.types.DeclareStruct(name, fields), nil
}

func (in *Interpreter) parseEnum(p *parser, s *Scope) (*Type, error) {
	p.lx.Next() // "enum"
	var name Name
	tok, err := p.lx.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Tag == TokIdent {
		name = tok.Text
		p.lx.Next()
	}
	t := in.types.DeclareEnum(name)
	if !in.peekIs(p, "{") {
		return t, nil
	}
	p.lx.Next()
	next := int64(0)
	for !in.peekIs(p, "}") {
		ctok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}
		val := next
		if in.peekIs(p, "=") {
			p.lx.Next()
			v, err := in.evalAssign(p, s)
			if err != nil {
				return nil, err
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return nil, err
			}
			val = sv.I
		}
		if in.mode == modeRun {
			vr, err := in.declare(in.global, ctok.Text, t)
			if err != nil {
				return nil, err
			}
			if err := in.scalarStore(variableValue(vr), intValue(t, val)); err != nil {
				return nil, err
			}
		}
		next = val + 1
		if in.peekIs(p, ",") {
			p.lx.Next()
			continue
		}
		break
	}
	return t, in.expect(p, TokPunct, "}")
}

// parseDeclarator parses one declarator: a run of leading '*' for pointer
// levels, a name, and trailing [] or (params) suffixes, composing them
// around base the way C reads declarators "inside out".
func (in *Interpreter) parseDeclarator(p *parser, s *Scope, base *Type) (Name, *Type, error) {
	t := base
	for in.peekIs(p, "*") {
		p.lx.Next()
		t = in.types.Pointer(t)
	}
	tok, err := p.lx.Next()
	if err != nil {
		return 0, nil, err
	}
	if tok.Tag != TokIdent {
		return 0, nil, in.errAt(tok, "expected declarator name")
	}
	name := tok.Text

	for {
		if in.peekIs(p, "[") {
			p.lx.Next()
			n := 0
			if !in.peekIs(p, "]") {
				v, err := in.evalAssign(p, s)
				if err != nil {
					return 0, nil, err
				}
				sv, err := in.scalarLoad(v)
				if err != nil {
					return 0, nil, err
				}
				n = int(sv.I)
			}
			if err := in.expect(p, TokPunct, "]"); err != nil {
				return 0, nil, err
			}
			t = in.types.Array(t, n)
			continue
		}
		if in.peekIs(p, "(") {
			p.lx.Next()
			var params []*Type
			var names []Name
			variadic := false
			for !in.peekIs(p, ")") {
				if in.peekIs(p, "...") {
					p.lx.Next()
					variadic = true
					break
				}
				pt, err := in.parseTypeSpec(p, s)
				if err != nil {
					return 0, nil, err
				}
				pname := Name(0)
				for in.peekIs(p, "*") {
					p.lx.Next()
					pt = in.types.Pointer(pt)
				}
				if tok, _ := p.lx.Peek(); tok.Tag == TokIdent {
					pname, _ = in.expectIdent(p)
				}
				params = append(params, pt)
				names = append(names, pname)
				if in.peekIs(p, ",") {
					p.lx.Next()
					continue
				}
				break
			}
			if err := in.expect(p, TokPunct, ")"); err != nil {
				return 0, nil, err
			}
			t = &Type{Kind: KFunc, Return: t, Params: params, ParamNames: names, Variadic: variadic}
			continue
		}
		break
	}
	return name, t, nil
}

// execInitializer stores an initializer expression (or brace-enclosed
// aggregate initializer list) into dst, which must already have storage
// of type t reserved.
func (in *Interpreter) execInitializer(p *parser, s *Scope, dst Value, t *Type) error {
	rt := t.Resolved()
	if in.peekIs(p, "{") {
		return in.execAggregateInit(p, s, dst, rt)
	}

	if rt.Kind == KArray && rt.Elem.Resolved().Kind == KChar {
		tok, err := p.lx.Peek()
		if err != nil {
			return err
		}
		if tok.Tag == TokString {
			p.lx.Next()
			text := in.strTab.text(tok.Str)
			return in.storeCharArray(dst, text)
		}
	}

	v, err := in.evalAssign(p, s)
	if err != nil {
		return err
	}
	if rt.Kind == KStruct || rt.Kind == KUnion {
		return in.aggregateAssign(dst, v)
	}
	sv, err := in.scalarLoad(in.decay(v))
	if err != nil {
		return err
	}
	return in.scalarStore(dst, sv)
}

func (in *Interpreter) storeCharArray(dst Value, text string) error {
	bytes := append([]byte(text), 0)
	for i, b := range bytes {
		elem := lvalue(in.types.charT, dst.Addr+uint(i))
		if err := in.scalarStore(elem, intValue(in.types.charT, int64(b))); err != nil {
			return err
		}
	}
	return nil
}

// execAggregateInit handles `{ ... }` initializers for arrays and structs,
// recursing for nested aggregates; an array-of-char field may still take a
// string literal element per the char[] special case.
func (in *Interpreter) execAggregateInit(p *parser, s *Scope, dst Value, rt *Type) error {
	if err := in.expect(p, TokPunct, "{"); err != nil {
		return err
	}
	idx := 0
	for !in.peekIs(p, "}") {
		var elemType *Type
		var elemAddr uint
		switch rt.Kind {
		case KArray:
			elemType = rt.Elem
			elemAddr = dst.Addr + uint(idx)*rt.Elem.CellSize()
		case KStruct, KUnion:
			if idx >= len(rt.Fields) {
				return RuntimeError{Kind: "init", Message: "too many initializers"}
			}
			elemType = rt.Fields[idx].Type
			elemAddr = dst.Addr + rt.Fields[idx].Cell
		default:
			return RuntimeError{Kind: "init", Message: "cannot brace-initialize this type"}
		}
		elem := lvalue(elemType, elemAddr)
		if err := in.execInitializer(p, s, elem, elemType); err != nil {
			return err
		}
		idx++
		if in.peekIs(p, ",") {
			p.lx.Next()
			continue
		}
		break
	}
	return in.expect(p, TokPunct, "}")
}
