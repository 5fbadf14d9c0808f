package main

import (
	"bytes"
	"io"
)

// namedReader adapts an in-memory byte slice to the io.Reader-with-Name
// shape fileinput.Input.nextIn uses to label a Scan location, so a
// synthetic #include body gets a sensible name in error messages instead
// of "<unnamed *bytes.Reader>".
type namedReader struct {
	*bytes.Reader
	name string
}

func (r namedReader) Name() string { return r.name }

func newNamedReader(name, source string) io.Reader {
	return namedReader{Reader: bytes.NewReader([]byte(source)), name: name}
}

// parseSource runs a complete nested parse of source (an #include body)
// against a throwaway Lexer and Input, sharing this Interpreter's string
// table, type table, global scope, macros, and functions. The calling
// Lexer's cursor is untouched -- this is a fully separate token stream,
// not a splice into the includer's.
func (in *Interpreter) parseSource(name, source string) error {
	sub := &Interpreter{
		logging:     in.logging,
		arena:       in.arena,
		staticArena: in.staticArena,
		statics:     in.statics,
		strTab:      in.strTab,
		types:       in.types,
		global:      in.global,
		mode:        modeRun,
		includes:    in.includes,
		platform:    in.platform,
		funcs:       in.funcs,
		macros:      in.macros,
		seen:        in.seen,
		cfg:         in.cfg,
		out:         in.out,
	}
	sub.Input.Queue = []io.Reader{newNamedReader(name, source)}

	lx := newLexer(sub)
	p := &parser{lx: lx}
	if err := sub.parseTopLevel(p); err != nil {
		return err
	}

	in.arena = sub.arena
	in.staticArena = sub.staticArena
	in.strTab = sub.strTab
	in.funcs = sub.funcs
	in.macros = sub.macros
	in.seen = sub.seen
	return nil
}

// parseTopLevel runs the file/translation-unit grammar: a sequence of
// #include/#define directives, function definitions, and global
// declarations, read until end of input.
func (in *Interpreter) parseTopLevel(p *parser) error {
	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return err
		}
		if tok.Tag == TokEOF {
			return nil
		}
		if tok.Tag == TokEOL {
			p.lx.Next()
			continue
		}
		if tok.Tag == TokHashInclude {
			if err := in.execInclude(p); err != nil {
				return err
			}
			continue
		}
		if tok.Tag == TokHashDefine {
			if err := in.execDefine(p); err != nil {
				return err
			}
			continue
		}
		if tok.Tag == TokKeyword && in.strTab.text(tok.Text) == "typedef" {
			if err := in.execTypedef(p, in.global); err != nil {
				return err
			}
			continue
		}
		if err := in.parseTopLevelDecl(p); err != nil {
			return err
		}
	}
}

// parseTopLevelDecl parses one global declaration, which is either a
// variable declaration (possibly several comma-separated, with
// initializers) or a function definition/prototype, distinguished by
// whether a '(' directly follows the declarator name.
func (in *Interpreter) parseTopLevelDecl(p *parser) error {
	isStatic := false
	if in.peekIs(p, "static") {
		p.lx.Next()
		isStatic = true
	}
	base, err := in.parseTypeSpec(p, in.global)
	if err != nil {
		return err
	}
	if in.peekIs(p, ";") { // a bare struct/union/enum declaration, no declarator
		p.lx.Next()
		return nil
	}

	for {
		name, derived, err := in.parseDeclarator(p, in.global, base)
		if err != nil {
			return err
		}

		if derived.Kind == KFunc {
			if in.peekIs(p, "{") {
				in.funcs[name] = &FuncDescriptor{
					Name:       name,
					Return:     derived.Return,
					ParamTypes: derived.Params,
					ParamNames: derived.ParamNames,
					Variadic:   derived.Variadic,
					BodyPos:    p.lx.Pos(),
				}
				return in.skipFunctionBody(p)
			}
			if _, exists := in.funcs[name]; !exists {
				in.funcs[name] = &FuncDescriptor{Name: name, Return: derived.Return, ParamTypes: derived.Params, ParamNames: derived.ParamNames, Variadic: derived.Variadic}
			}
		} else {
			var varb *Variable
			if isStatic {
				varb, _, err = in.declareStatic(in.global, name, derived)
			} else {
				varb, err = in.declare(in.global, name, derived)
			}
			if err != nil {
				return err
			}
			if in.peekIs(p, "=") {
				p.lx.Next()
				if err := in.execInitializer(p, in.global, variableValue(varb), derived); err != nil {
					return err
				}
			}
		}

		if in.peekIs(p, ",") {
			p.lx.Next()
			continue
		}
		break
	}
	return in.expectSemi(p)
}

// skipFunctionBody consumes a function definition's brace-delimited body
// without executing it: function bodies run only when called, via
// call's own p.lx.Seek(fn.BodyPos).
func (in *Interpreter) skipFunctionBody(p *parser) error {
	if err := in.expect(p, TokPunct, "{"); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		tok, err := p.lx.Next()
		if err != nil {
			return err
		}
		if tok.Tag == TokEOF {
			return in.errAt(tok, "unexpected end of input in function body")
		}
		if tok.Tag == TokPunct {
			switch in.strTab.text(tok.Text) {
			case "{":
				depth++
			case "}":
				depth--
			}
		}
	}
	return nil
}
