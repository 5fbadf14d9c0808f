package main

// execDefine handles a #define directive: either an object-like macro
// (`#define NAME body`) or a function-like one (`#define NAME(a,b) body`,
// no space before the paren). The body is kept as a [Start,End) token
// span rather than lowered into anything -- expansion re-enters the
// parser over that span with a shadow scope binding the parameters, so
// recursive/nested macro bodies are parsed exactly like ordinary source.
func (in *Interpreter) execDefine(p *parser) error {
	p.lx.Next() // the "#define" token itself
	nameTok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if nameTok.Tag != TokIdent {
		return in.errAt(nameTok, "expected macro name after #define")
	}

	m := &MacroDescriptor{IsObject: true}

	if in.peekIsNoSpace(p, nameTok) {
		p.lx.Next() // "("
		for !in.peekIs(p, ")") {
			pn, err := in.expectIdent(p)
			if err != nil {
				return err
			}
			m.Params = append(m.Params, pn)
			if in.peekIs(p, ",") {
				p.lx.Next()
				continue
			}
			break
		}
		if err := in.expect(p, TokPunct, ")"); err != nil {
			return err
		}
		m.IsObject = false
	}

	m.Start = p.lx.Pos()
	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return err
		}
		if tok.Tag == TokEOL || tok.Tag == TokEOF {
			break
		}
		p.lx.Next()
	}
	m.End = p.lx.Pos()
	if tok, _ := p.lx.Peek(); tok.Tag == TokEOL {
		p.lx.Next()
	}

	if in.mode == modeRun {
		if in.macros == nil {
			in.macros = make(map[Name]*MacroDescriptor)
		}
		in.macros[nameTok.Text] = m
	}
	return nil
}

// peekIsNoSpace reports whether the next token is "(" immediately
// following the macro name with no separating whitespace, the standard C
// rule distinguishing a function-like macro from an object-like one whose
// body happens to start with a parenthesized expression.
func (in *Interpreter) peekIsNoSpace(p *parser, name Token) bool {
	if !in.peekIs(p, "(") {
		return false
	}
	tok, err := p.lx.Peek()
	if err != nil {
		return false
	}
	return tok.Line == name.Line && tok.Col == name.Col+len(in.strTab.text(name.Text))
}

// expandMacro re-lexes a macro's body span as an expression, in a shadow
// scope binding each parameter to the corresponding argument's value (or,
// for an object-like macro, no new bindings at all). The call site's
// cursor resumes immediately after the invocation once the body has been
// fully consumed from its own saved span.
func (in *Interpreter) expandMacro(p *parser, s *Scope, m *MacroDescriptor) (Value, error) {
	shadow := in.newScope(s)
	defer in.closeScope(shadow)

	if !m.IsObject {
		if err := in.expect(p, TokPunct, "("); err != nil {
			return Value{}, err
		}
		for i, pname := range m.Params {
			argVal, err := in.evalAssign(p, s)
			if err != nil {
				return Value{}, err
			}
			sv, err := in.scalarLoad(in.decay(argVal))
			if err != nil {
				return Value{}, err
			}
			v, err := in.declare(shadow, pname, sv.Type)
			if err != nil {
				return Value{}, err
			}
			if err := in.scalarStore(variableValue(v), sv); err != nil {
				return Value{}, err
			}
			if i < len(m.Params)-1 {
				if err := in.expect(p, TokPunct, ","); err != nil {
					return Value{}, err
				}
			}
		}
		if err := in.expect(p, TokPunct, ")"); err != nil {
			return Value{}, err
		}
	}

	callerPos := p.lx.Pos()
	p.lx.Seek(m.Start)
	bodyParser := &parser{lx: p.lx}
	v, err := in.evalAssign(bodyParser, shadow)
	if err != nil {
		return Value{}, err
	}
	p.lx.Seek(callerPos)
	return v, nil
}
