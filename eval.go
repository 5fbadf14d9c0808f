package main

import "fmt"

// parser wraps the Lexer whose cursor the evaluator advances, mirroring the
// teacher's pattern of a thin cursor type passed down through the
// recursive-descent call chain instead of a free-standing AST. There is no
// intermediate tree: execStatement and evalExpr interpret tokens directly
// as they're consumed, re-seeking the Lexer's cursor to re-run a span when
// a loop or macro needs to.
type parser struct {
	lx *Lexer
}

func (in *Interpreter) errAt(tok Token, format string, args ...interface{}) error {
	return ParseError{File: tok.File, Line: tok.Line, Col: tok.Col, Message: fmt.Sprintf(format, args...)}
}

func (in *Interpreter) expect(p *parser, tag TokenTag, text string) error {
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.Tag != tag || (text != "" && in.strTab.text(tok.Text) != text) {
		return in.errAt(tok, "expected %q, found %q", text, in.strTab.text(tok.Text))
	}
	return nil
}

func (in *Interpreter) peekIs(p *parser, text string) bool {
	tok, err := p.lx.Peek()
	if err != nil {
		return false
	}
	return (tok.Tag == TokPunct || tok.Tag == TokKeyword) && in.strTab.text(tok.Text) == text
}

// skipExpr consumes one expression's tokens without evaluating it, used
// for the untaken side of an if/loop header or a declaration initializer
// while in a non-run mode. It tracks bracket nesting so it stops at the
// right comma/semicolon/paren.
func (in *Interpreter) skipExpr(p *parser) error {
	depth := 0
	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return err
		}
		if tok.Tag == TokEOF {
			return in.errAt(tok, "unexpected end of input")
		}
		text := in.strTab.text(tok.Text)
		if tok.Tag == TokPunct {
			switch text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return nil
				}
				depth--
			case ",", ";":
				if depth == 0 {
					return nil
				}
			}
		}
		p.lx.Next()
	}
}

func (in *Interpreter) skipInitializer(p *parser) error {
	if in.peekIs(p, "{") {
		depth := 0
		for {
			tok, err := p.lx.Next()
			if err != nil {
				return err
			}
			if tok.Tag == TokPunct {
				switch in.strTab.text(tok.Text) {
				case "{":
					depth++
				case "}":
					depth--
					if depth == 0 {
						return nil
					}
				}
			}
		}
	}
	return in.skipExpr(p)
}

// evalExpr parses and evaluates a full comma/assignment-precedence
// expression starting at the lowest precedence level, returning the
// resulting Value (an lvalue when the expression denotes one).
func (in *Interpreter) evalExpr(p *parser, s *Scope) (Value, error) {
	v, err := in.evalAssign(p, s)
	for err == nil && in.peekIs(p, ",") {
		p.lx.Next()
		v, err = in.evalAssign(p, s)
	}
	return v, err
}

var assignOps = map[string]string{
	"=": "", "+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>",
}

func (in *Interpreter) evalAssign(p *parser, s *Scope) (Value, error) {
	lhs, err := in.evalTernary(p, s)
	if err != nil {
		return Value{}, err
	}
	tok, err := p.lx.Peek()
	if err != nil {
		return Value{}, err
	}
	if tok.Tag != TokPunct {
		return lhs, nil
	}
	op, ok := assignOps[in.strTab.text(tok.Text)]
	if !ok {
		return lhs, nil
	}
	p.lx.Next()
	rhs, err := in.evalAssign(p, s)
	if err != nil {
		return Value{}, err
	}
	if in.mode != modeRun {
		return lhs, nil
	}
	if op == "" {
		if rk := lhs.Type.Resolved().Kind; rk == KStruct || rk == KUnion || rk == KArray {
			if err := in.aggregateAssign(lhs, rhs); err != nil {
				return Value{}, err
			}
			return lhs, nil
		}
	}
	rv, err := in.scalarLoad(in.decay(rhs))
	if err != nil {
		return Value{}, err
	}
	if op != "" {
		lv, err := in.scalarLoad(lhs)
		if err != nil {
			return Value{}, err
		}
		rv, err = in.binOp(op, lv, rv)
		if err != nil {
			return Value{}, err
		}
	}
	if err := in.scalarStore(lhs, rv); err != nil {
		return Value{}, err
	}
	return in.scalarLoad(lhs)
}

func (in *Interpreter) evalTernary(p *parser, s *Scope) (Value, error) {
	cond, err := in.evalLogicalOr(p, s)
	if err != nil {
		return Value{}, err
	}
	if !in.peekIs(p, "?") {
		return cond, nil
	}
	p.lx.Next()

	var truthy bool
	if in.mode == modeRun {
		sv, err := in.scalarLoad(cond)
		if err != nil {
			return Value{}, err
		}
		if sv.Type.Resolved().Kind.isFloating() {
			truthy = sv.F != 0
		} else {
			truthy = sv.I != 0
		}
	}

	saved := in.mode
	if saved == modeRun && !truthy {
		in.mode = modeSkip
	}
	thenV, err := in.evalAssign(p, s)
	if err != nil {
		return Value{}, err
	}
	in.mode = saved

	if err := in.expect(p, TokPunct, ":"); err != nil {
		return Value{}, err
	}

	if saved == modeRun && truthy {
		in.mode = modeSkip
	}
	elseV, err := in.evalAssign(p, s)
	if err != nil {
		return Value{}, err
	}
	in.mode = saved

	if in.mode != modeRun {
		return Value{}, nil
	}
	if truthy {
		return in.scalarLoad(thenV)
	}
	return in.scalarLoad(elseV)
}

// evalLogicalOr and evalLogicalAnd implement && and || with short-circuit
// evaluation via skip mode rather than an early return, so the driver's
// single execution-mode variable stays the only control-flow signal in
// the engine.
func (in *Interpreter) evalLogicalOr(p *parser, s *Scope) (Value, error) {
	lhs, err := in.evalLogicalAnd(p, s)
	if err != nil {
		return Value{}, err
	}
	if !in.peekIs(p, "||") {
		return lhs, nil
	}
	result := false
	if in.mode == modeRun {
		sv, err := in.scalarLoad(lhs)
		if err != nil {
			return Value{}, err
		}
		result = truthy(sv)
	}
	for in.peekIs(p, "||") {
		p.lx.Next()
		saved := in.mode
		if saved == modeRun && result {
			in.mode = modeSkip
		}
		rhs, err := in.evalLogicalAnd(p, s)
		if err != nil {
			return Value{}, err
		}
		in.mode = saved
		if saved == modeRun && !result {
			sv, err := in.scalarLoad(rhs)
			if err != nil {
				return Value{}, err
			}
			result = truthy(sv)
		}
	}
	if in.mode != modeRun {
		return Value{}, nil
	}
	return boolValue(in, result), nil
}

func (in *Interpreter) evalLogicalAnd(p *parser, s *Scope) (Value, error) {
	lhs, err := in.evalBitOr(p, s)
	if err != nil {
		return Value{}, err
	}
	if !in.peekIs(p, "&&") {
		return lhs, nil
	}
	result := true
	if in.mode == modeRun {
		sv, err := in.scalarLoad(lhs)
		if err != nil {
			return Value{}, err
		}
		result = truthy(sv)
	}
	for in.peekIs(p, "&&") {
		p.lx.Next()
		saved := in.mode
		if saved == modeRun && !result {
			in.mode = modeSkip
		}
		rhs, err := in.evalBitOr(p, s)
		if err != nil {
			return Value{}, err
		}
		in.mode = saved
		if saved == modeRun && result {
			sv, err := in.scalarLoad(rhs)
			if err != nil {
				return Value{}, err
			}
			result = truthy(sv)
		}
	}
	if in.mode != modeRun {
		return Value{}, nil
	}
	return boolValue(in, result), nil
}

func truthy(v Value) bool {
	if v.Type.Resolved().Kind.isFloating() {
		return v.F != 0
	}
	return v.I != 0
}

func boolValue(in *Interpreter, b bool) Value {
	if b {
		return intValue(in.types.intT, 1)
	}
	return intValue(in.types.intT, 0)
}

// binaryLevel is one precedence tier of left-associative binary operators,
// used to generate the bitwise/relational/additive/multiplicative chain
// below without repeating the same climb four times over.
func (in *Interpreter) binaryLevel(p *parser, s *Scope, ops []string, next func(*parser, *Scope) (Value, error)) (Value, error) {
	lhs, err := next(p, s)
	if err != nil {
		return Value{}, err
	}
	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return Value{}, err
		}
		if tok.Tag != TokPunct {
			return lhs, nil
		}
		text := in.strTab.text(tok.Text)
		matched := false
		for _, op := range ops {
			if op == text {
				matched = true
				break
			}
		}
		if !matched {
			return lhs, nil
		}
		p.lx.Next()
		rhs, err := next(p, s)
		if err != nil {
			return Value{}, err
		}
		if in.mode != modeRun {
			continue
		}
		lv, err := in.scalarLoad(in.decay(lhs))
		if err != nil {
			return Value{}, err
		}
		rv, err := in.scalarLoad(in.decay(rhs))
		if err != nil {
			return Value{}, err
		}
		lhs, err = in.binOp(text, lv, rv)
		if err != nil {
			return Value{}, err
		}
	}
}

func (in *Interpreter) evalBitOr(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"|"}, in.evalBitXor)
}
func (in *Interpreter) evalBitXor(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"^"}, in.evalBitAnd)
}
func (in *Interpreter) evalBitAnd(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"&"}, in.evalEquality)
}
func (in *Interpreter) evalEquality(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"==", "!="}, in.evalRelational)
}
func (in *Interpreter) evalRelational(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"<", ">", "<=", ">="}, in.evalShift)
}
func (in *Interpreter) evalShift(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"<<", ">>"}, in.evalAdditive)
}
func (in *Interpreter) evalAdditive(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"+", "-"}, in.evalMultiplicative)
}
func (in *Interpreter) evalMultiplicative(p *parser, s *Scope) (Value, error) {
	return in.binaryLevel(p, s, []string{"*", "/", "%"}, in.evalCast)
}

func (in *Interpreter) evalCast(p *parser, s *Scope) (Value, error) {
	if in.peekIs(p, "(") {
		save := p.lx.Pos()
		p.lx.Next()
		if t, ok := in.tryParseTypeName(p, s); ok {
			if err := in.expect(p, TokPunct, ")"); err != nil {
				return Value{}, err
			}
			v, err := in.evalCast(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				return Value{}, nil
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			return in.convert(sv, t), nil
		}
		p.lx.Seek(save)
	}
	return in.evalUnary(p, s)
}

// tryParseTypeName attempts to parse "(" already consumed "type-name" as a
// cast target, backtracking the caller's responsibility on failure.
func (in *Interpreter) tryParseTypeName(p *parser, s *Scope) (*Type, bool) {
	tok, err := p.lx.Peek()
	if err != nil {
		return nil, false
	}
	name := in.strTab.text(tok.Text)
	if tok.Tag == TokKeyword && isTypeKeyword(name) {
	} else if tok.Tag == TokIdent && in.isTypedefName(s, tok.Text) {
	} else {
		return nil, false
	}
	base, err := in.parseTypeSpec(p, s)
	if err != nil {
		return nil, false
	}
	t := base
	for in.peekIs(p, "*") {
		p.lx.Next()
		t = in.types.Pointer(t)
	}
	return t, true
}

func (in *Interpreter) evalUnary(p *parser, s *Scope) (Value, error) {
	tok, err := p.lx.Peek()
	if err != nil {
		return Value{}, err
	}
	if tok.Tag == TokKeyword && in.strTab.text(tok.Text) == "sizeof" {
		p.lx.Next()
		if in.peekIs(p, "(") {
			save := p.lx.Pos()
			p.lx.Next()
			if t, ok := in.tryParseTypeName(p, s); ok {
				if err := in.expect(p, TokPunct, ")"); err != nil {
					return Value{}, err
				}
				return intValue(in.types.ulongT, int64(t.Sizeof())), nil
			}
			p.lx.Seek(save)
		}
		v, err := in.evalUnary(p, s)
		if err != nil {
			return Value{}, err
		}
		if in.mode != modeRun {
			return Value{}, nil
		}
		return intValue(in.types.ulongT, int64(v.Type.Sizeof())), nil
	}

	if tok.Tag == TokPunct {
		switch in.strTab.text(tok.Text) {
		case "+":
			p.lx.Next()
			return in.evalCast(p, s)
		case "-":
			p.lx.Next()
			v, err := in.evalCast(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				return Value{}, nil
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			if sv.Type.Resolved().Kind.isFloating() {
				return floatValue(sv.Type, -sv.F), nil
			}
			return intValue(sv.Type, -sv.I), nil
		case "!":
			p.lx.Next()
			v, err := in.evalCast(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				return Value{}, nil
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			return boolValue(in, !truthy(sv)), nil
		case "~":
			p.lx.Next()
			v, err := in.evalCast(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				return Value{}, nil
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			return intValue(sv.Type, ^sv.I), nil
		case "&":
			p.lx.Next()
			v, err := in.evalCast(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				return Value{}, nil
			}
			if !v.IsLValue {
				return Value{}, RuntimeError{Kind: "address-of", Message: "operand is not an lvalue"}
			}
			return Value{Type: in.types.Pointer(v.Type), I: int64(v.Addr)}, nil
		case "*":
			p.lx.Next()
			v, err := in.evalCast(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				return Value{}, nil
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			pt := sv.Type.Resolved()
			if pt.Kind != KPointer {
				return Value{}, RuntimeError{Kind: "deref", Message: "not a pointer"}
			}
			return lvalue(pt.Elem, uint(sv.I)), nil
		case "++", "--":
			return in.evalPrefixIncDec(p, s, in.strTab.text(tok.Text))
		}
	}
	return in.evalPostfix(p, s)
}

func (in *Interpreter) evalPrefixIncDec(p *parser, s *Scope, op string) (Value, error) {
	p.lx.Next()
	v, err := in.evalUnary(p, s)
	if err != nil {
		return Value{}, err
	}
	if in.mode != modeRun {
		return Value{}, nil
	}
	sv, err := in.scalarLoad(v)
	if err != nil {
		return Value{}, err
	}
	delta := int64(1)
	if op == "--" {
		delta = -1
	}
	nv, err := in.addDelta(sv, delta)
	if err != nil {
		return Value{}, err
	}
	if err := in.scalarStore(v, nv); err != nil {
		return Value{}, err
	}
	return in.scalarLoad(v)
}

// addDelta adds an integer delta to v, scaling pointer arithmetic by the
// pointee's CellSize rather than its Sizeof: a pointer's runtime value in
// this interpreter is an arena cell address, not a byte address, so it
// must advance in the same unit evalIndex and the deref operator read it
// in. C's "pointer +/- integer scales by sizeof(*T)" rule still holds
// from the interpreted program's point of view, since both the pointer
// and its scale are expressed consistently in cell units throughout.
func (in *Interpreter) addDelta(v Value, delta int64) (Value, error) {
	rt := v.Type.Resolved()
	if rt.Kind == KPointer {
		stride := int64(rt.Elem.CellSize())
		if stride == 0 {
			stride = 1
		}
		return intValue(v.Type, v.I+delta*stride), nil
	}
	if rt.Kind.isFloating() {
		return floatValue(v.Type, v.F+float64(delta)), nil
	}
	return intValue(v.Type, v.I+delta), nil
}

func (in *Interpreter) evalPostfix(p *parser, s *Scope) (Value, error) {
	v, err := in.evalPrimary(p, s)
	if err != nil {
		return Value{}, err
	}
	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return Value{}, err
		}
		if tok.Tag != TokPunct {
			return v, nil
		}
		switch in.strTab.text(tok.Text) {
		case "[":
			p.lx.Next()
			idx, err := in.evalExpr(p, s)
			if err != nil {
				return Value{}, err
			}
			if err := in.expect(p, TokPunct, "]"); err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				continue
			}
			v, err = in.evalIndex(v, idx)
			if err != nil {
				return Value{}, err
			}
		case "(":
			p.lx.Next()
			args, err := in.evalArgList(p, s)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				continue
			}
			v, err = in.call(p, v, args)
			if err != nil {
				return Value{}, err
			}
		case ".":
			p.lx.Next()
			name, err := in.expectIdent(p)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				continue
			}
			v, err = in.evalMember(v, name)
			if err != nil {
				return Value{}, err
			}
		case "->":
			p.lx.Next()
			name, err := in.expectIdent(p)
			if err != nil {
				return Value{}, err
			}
			if in.mode != modeRun {
				continue
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			if sv.Type.Resolved().Kind != KPointer {
				return Value{}, RuntimeError{Kind: "member", Message: "-> on non-pointer"}
			}
			v, err = in.evalMember(lvalue(sv.Type.Resolved().Elem, uint(sv.I)), name)
			if err != nil {
				return Value{}, err
			}
		case "++", "--":
			op := in.strTab.text(tok.Text)
			p.lx.Next()
			if in.mode != modeRun {
				continue
			}
			sv, err := in.scalarLoad(v)
			if err != nil {
				return Value{}, err
			}
			delta := int64(1)
			if op == "--" {
				delta = -1
			}
			nv, err := in.addDelta(sv, delta)
			if err != nil {
				return Value{}, err
			}
			if err := in.scalarStore(v, nv); err != nil {
				return Value{}, err
			}
			v = sv
		default:
			return v, nil
		}
	}
}

func (in *Interpreter) expectIdent(p *parser) (Name, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return 0, err
	}
	if tok.Tag != TokIdent {
		return 0, in.errAt(tok, "expected identifier")
	}
	return tok.Text, nil
}

func (in *Interpreter) evalIndex(base, idx Value) (Value, error) {
	dv, err := in.scalarLoad(in.decay(base))
	if err != nil {
		return Value{}, err
	}
	iv, err := in.scalarLoad(idx)
	if err != nil {
		return Value{}, err
	}
	pt := dv.Type.Resolved()
	if pt.Kind != KPointer {
		return Value{}, RuntimeError{Kind: "index", Message: "not indexable"}
	}
	cellAddr := uint(dv.I + iv.I*int64(pt.Elem.CellSize()))
	return lvalue(pt.Elem, cellAddr), nil
}

func (in *Interpreter) evalMember(base Value, name Name) (Value, error) {
	rt := base.Type.Resolved()
	f, ok := rt.FieldByName(name)
	if !ok {
		return Value{}, RuntimeError{Kind: "member", Message: "no such field: " + in.strTab.text(name)}
	}
	return lvalue(f.Type, base.Addr+f.Cell), nil
}

func (in *Interpreter) evalArgList(p *parser, s *Scope) ([]Value, error) {
	var args []Value
	if in.peekIs(p, ")") {
		p.lx.Next()
		return args, nil
	}
	for {
		v, err := in.evalAssign(p, s)
		if err != nil {
			return nil, err
		}
		if in.mode == modeRun {
			dv := in.decay(v)
			rk := dv.Type.Resolved().Kind
			var sv Value
			if rk == KStruct || rk == KUnion {
				sv = dv // pass the lvalue through; call binds it with aggregateAssign
			} else {
				sv, err = in.scalarLoad(dv)
				if err != nil {
					return nil, err
				}
			}
			args = append(args, sv)
		}
		if in.peekIs(p, ",") {
			p.lx.Next()
			continue
		}
		break
	}
	return args, in.expect(p, TokPunct, ")")
}

func (in *Interpreter) evalPrimary(p *parser, s *Scope) (Value, error) {
	tok, err := p.lx.Next()
	if err != nil {
		return Value{}, err
	}
	switch tok.Tag {
	case TokNumber:
		if tok.IsFloat {
			return floatValue(in.types.doubleT, tok.Float), nil
		}
		t := in.types.intT
		if tok.Long && tok.Unsigned {
			t = in.types.ulongT
		} else if tok.Long {
			t = in.types.longT
		} else if tok.Unsigned {
			t = in.types.uintT
		}
		return intValue(t, tok.Int), nil
	case TokChar:
		return intValue(in.types.charT, tok.Int), nil
	case TokString:
		return Value{Type: in.types.Pointer(in.types.charT), Str: tok.Str}, nil
	case TokIdent:
		if in.mode != modeRun {
			return Value{}, nil
		}
		if v, ok := s.lookup(tok.Text); ok {
			return variableValue(v), nil
		}
		if m, ok := in.macros[tok.Text]; ok {
			return in.expandMacro(p, s, m)
		}
		if fn, ok := in.funcs[tok.Text]; ok {
			return Value{Type: in.funcType(fn), Func: fn}, nil
		}
		return Value{}, in.errAt(tok, "undefined identifier %q", in.strTab.text(tok.Text))
	case TokPunct:
		if in.strTab.text(tok.Text) == "(" {
			v, err := in.evalExpr(p, s)
			if err != nil {
				return Value{}, err
			}
			return v, in.expect(p, TokPunct, ")")
		}
	}
	return Value{}, in.errAt(tok, "unexpected token %q", in.strTab.text(tok.Text))
}

func (in *Interpreter) funcType(fn *FuncDescriptor) *Type {
	return &Type{Kind: KFunc, Return: fn.Return, Params: fn.ParamTypes, ParamNames: fn.ParamNames, Variadic: fn.Variadic}
}

// binOp applies one binary operator to already-loaded scalar operands,
// going through usualArith for the arithmetic ones so integer promotion
// and the float/unsigned ranking ladder are applied uniformly.
func (in *Interpreter) binOp(op string, a, b Value) (Value, error) {
	switch op {
	case "+":
		if a.Type.Resolved().Kind == KPointer {
			return in.addDelta(a, b.I)
		}
		if b.Type.Resolved().Kind == KPointer {
			return in.addDelta(b, a.I)
		}
	case "-":
		if a.Type.Resolved().Kind == KPointer && b.Type.Resolved().Kind == KPointer {
			stride := int64(a.Type.Resolved().Elem.CellSize())
			if stride == 0 {
				stride = 1
			}
			return intValue(in.types.longT, (a.I-b.I)/stride), nil
		}
		if a.Type.Resolved().Kind == KPointer {
			return in.addDelta(a, -b.I)
		}
	}

	t, ca, cb := in.usualArith(a, b)
	isF := t.Resolved().Kind.isFloating()
	switch op {
	case "+":
		if isF {
			return floatValue(t, ca.F+cb.F), nil
		}
		return intValue(t, ca.I+cb.I), nil
	case "-":
		if isF {
			return floatValue(t, ca.F-cb.F), nil
		}
		return intValue(t, ca.I-cb.I), nil
	case "*":
		if isF {
			return floatValue(t, ca.F*cb.F), nil
		}
		return intValue(t, ca.I*cb.I), nil
	case "/":
		if isF {
			return floatValue(t, ca.F/cb.F), nil
		}
		if cb.I == 0 {
			return Value{}, RuntimeError{Kind: "divide", Message: "division by zero"}
		}
		return intValue(t, ca.I/cb.I), nil
	case "%":
		if cb.I == 0 {
			return Value{}, RuntimeError{Kind: "divide", Message: "modulo by zero"}
		}
		return intValue(t, ca.I%cb.I), nil
	case "&":
		return intValue(t, ca.I&cb.I), nil
	case "|":
		return intValue(t, ca.I|cb.I), nil
	case "^":
		return intValue(t, ca.I^cb.I), nil
	case "<<":
		return intValue(t, ca.I<<uint(cb.I)), nil
	case ">>":
		return intValue(t, ca.I>>uint(cb.I)), nil
	case "==":
		if isF {
			return boolValue(in, ca.F == cb.F), nil
		}
		return boolValue(in, ca.I == cb.I), nil
	case "!=":
		if isF {
			return boolValue(in, ca.F != cb.F), nil
		}
		return boolValue(in, ca.I != cb.I), nil
	case "<":
		if isF {
			return boolValue(in, ca.F < cb.F), nil
		}
		return boolValue(in, ca.I < cb.I), nil
	case ">":
		if isF {
			return boolValue(in, ca.F > cb.F), nil
		}
		return boolValue(in, ca.I > cb.I), nil
	case "<=":
		if isF {
			return boolValue(in, ca.F <= cb.F), nil
		}
		return boolValue(in, ca.I <= cb.I), nil
	case ">=":
		if isF {
			return boolValue(in, ca.F >= cb.F), nil
		}
		return boolValue(in, ca.I >= cb.I), nil
	}
	return Value{}, RuntimeError{Kind: "binop", Message: "unsupported operator " + op}
}
