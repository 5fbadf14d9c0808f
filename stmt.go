package main

// mode is the single control-flow state the Statement Driver consults
// before running each statement, replacing native panic/goroutine-based
// control flow with one variable a FORTH-style interpreter core tracks
// as its single mode. Run executes normally; every other mode means
// "unwind, don't execute, until something clears me".
type mode int

const (
	modeRun mode = iota
	modeSkip
	modeReturn
	modeBreak
	modeContinue
	modeGoto
	modeCaseSearch
)

func (m mode) String() string {
	switch m {
	case modeRun:
		return "run"
	case modeSkip:
		return "skip"
	case modeReturn:
		return "return"
	case modeBreak:
		return "break"
	case modeContinue:
		return "continue"
	case modeGoto:
		return "goto"
	case modeCaseSearch:
		return "case-search"
	}
	return "?"
}

// modeData carries the payload a non-run mode needs: which label a goto
// is hunting for, or which case value a switch's linear scan is matching
// against.
type modeData struct {
	gotoLabel Name

	caseTarget     Value
	haveCaseTarget bool
	caseMatched    bool
}

// execBlock runs a brace-delimited statement sequence in a fresh nested
// scope, closing it on every exit path (normal fall-through, break,
// continue, return, or an in-flight goto that never finds its label here).
func (in *Interpreter) execBlock(p *parser, parent *Scope) error {
	s := in.newScope(parent)
	defer in.closeScope(s)

	if err := in.expect(p, TokPunct, "{"); err != nil {
		return err
	}
	return in.runBlockBody(p, s)
}

// runBlockBody runs the statements of a block already past its opening
// brace, against scope s, until the matching closing brace. It is split
// out of execBlock so call() can re-enter it against the same scope when
// a backward goto needs the whole function body rescanned: redeclaring a
// fresh scope each pass would reset already-bound locals to uninitialized
// storage.
func (in *Interpreter) runBlockBody(p *parser, s *Scope) error {
	for {
		tok, err := p.lx.Peek()
		if err != nil {
			return err
		}
		if tok.Tag == TokPunct && in.strTab.text(tok.Text) == "}" {
			_, err := p.lx.Next()
			return err
		}
		if err := in.execStatement(p, s); err != nil {
			return err
		}
		if in.mode != modeRun && in.mode != modeGoto && in.mode != modeCaseSearch {
			return in.skipToBlockEnd(p)
		}
	}
}

// skipToBlockEnd consumes tokens up to and including the block's closing
// brace without executing them, used once a break/continue/return has
// fired and the rest of the block is dead code on this pass.
func (in *Interpreter) skipToBlockEnd(p *parser) error {
	depth := 1
	for depth > 0 {
		tok, err := p.lx.Next()
		if err != nil {
			return err
		}
		if tok.Tag == TokEOF {
			return in.errAt(tok, "unexpected end of input skipping block")
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

// execStatement dispatches one statement form. It is the statement
// driver's core switch: a single dispatch point keyed on the lookahead
// token rather than a separate parse tree per statement kind.
func (in *Interpreter) execStatement(p *parser, s *Scope) error {
	tok, err := p.lx.Peek()
	if err != nil {
		return err
	}

	if tok.Tag == TokPunct && in.strTab.text(tok.Text) == "{" {
		return in.execBlock(p, s)
	}
	if tok.Tag == TokPunct && in.strTab.text(tok.Text) == ";" {
		_, err := p.lx.Next()
		return err
	}
	if tok.Tag == TokHashInclude {
		return in.execInclude(p)
	}
	if tok.Tag == TokHashDefine {
		return in.execDefine(p)
	}

	if tok.Tag == TokIdent {
		if nxt, err := p.lx.TokenAt(p.lx.Pos() + 1); err == nil && nxt.Tag == TokPunct && in.strTab.text(nxt.Text) == ":" {
			return in.execLabel(p, s)
		}
	}

	if tok.Tag == TokKeyword {
		switch in.strTab.text(tok.Text) {
		case "if":
			return in.execIf(p, s)
		case "while":
			return in.execWhile(p, s)
		case "do":
			return in.execDoWhile(p, s)
		case "for":
			return in.execFor(p, s)
		case "switch":
			return in.execSwitch(p, s)
		case "case":
			return in.execCase(p, s)
		case "default":
			return in.execDefault(p, s)
		case "break":
			p.lx.Next()
			if in.mode == modeRun {
				in.mode = modeBreak
			}
			return in.expectSemi(p)
		case "continue":
			p.lx.Next()
			if in.mode == modeRun {
				in.mode = modeContinue
			}
			return in.expectSemi(p)
		case "return":
			return in.execReturn(p, s)
		case "goto":
			return in.execGoto(p, s)
		case "delete":
			return in.execDelete(p, s)
		case "typedef":
			return in.execTypedef(p, s)
		default:
			if isTypeKeyword(in.strTab.text(tok.Text)) || in.isTypedefName(s, tok.Text) {
				return in.execDeclaration(p, s)
			}
		}
	}

	if tok.Tag == TokIdent && in.isTypedefName(s, tok.Text) {
		return in.execDeclaration(p, s)
	}

	return in.execExprStatement(p, s)
}

func (in *Interpreter) expectSemi(p *parser) error {
	return in.expect(p, TokPunct, ";")
}

func (in *Interpreter) execExprStatement(p *parser, s *Scope) error {
	if in.mode == modeRun {
		if _, err := in.evalExpr(p, s); err != nil {
			return err
		}
	} else {
		if err := in.skipExpr(p); err != nil {
			return err
		}
	}
	return in.expectSemi(p)
}

// execIf implements if/else using skip mode for the untaken branch rather
// than re-lexing it: the driver still walks every token of the skipped
// branch (to keep the Lexer's cursor in sync) but execStatement's skip
// checks short-circuit all side effects.
func (in *Interpreter) execIf(p *parser, s *Scope) error {
	p.lx.Next() // "if"
	if err := in.expect(p, TokPunct, "("); err != nil {
		return err
	}
	cond, err := in.evalCondition(p, s)
	if err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, ")"); err != nil {
		return err
	}

	saved := in.mode
	if saved == modeRun && !cond {
		in.mode = modeSkip
	}
	if err := in.execStatement(p, s); err != nil {
		return err
	}
	if in.mode == modeSkip {
		in.mode = saved
	}

	tok, err := p.lx.Peek()
	if err != nil {
		return err
	}
	if tok.Tag == TokKeyword && in.strTab.text(tok.Text) == "else" {
		p.lx.Next()
		if in.mode == modeRun && cond {
			in.mode = modeSkip
		}
		if err := in.execStatement(p, s); err != nil {
			return err
		}
		if in.mode == modeSkip {
			in.mode = saved
		}
	}
	return nil
}

// evalCondition evaluates the parenthesized controlling expression, or
// skips it (returning an unused false) when the driver is already not
// running, so loop/if headers inside a skipped branch don't execute
// side-effecting conditions.
func (in *Interpreter) evalCondition(p *parser, s *Scope) (bool, error) {
	if in.mode != modeRun {
		return false, in.skipExpr(p)
	}
	v, err := in.evalExpr(p, s)
	if err != nil {
		return false, err
	}
	sv, err := in.scalarLoad(v)
	if err != nil {
		return false, err
	}
	if sv.Type.Resolved().Kind.isFloating() {
		return sv.F != 0, nil
	}
	return sv.I != 0, nil
}

func (in *Interpreter) execWhile(p *parser, s *Scope) error {
	condPos := p.lx.Pos()
	p.lx.Next() // "while"
	for {
		p.lx.Seek(condPos + 1)
		if err := in.expect(p, TokPunct, "("); err != nil {
			return err
		}
		cond, err := in.evalCondition(p, s)
		if err != nil {
			return err
		}
		if err := in.expect(p, TokPunct, ")"); err != nil {
			return err
		}
		if in.mode == modeRun && !cond {
			in.mode = modeSkip
		}
		if err := in.execStatement(p, s); err != nil {
			return err
		}
		switch in.mode {
		case modeBreak:
			in.mode = modeRun
			return nil
		case modeContinue:
			in.mode = modeRun
		case modeSkip:
			in.mode = modeRun
			return nil
		case modeReturn, modeGoto:
			return nil
		}
		if !cond {
			return nil
		}
	}
}

func (in *Interpreter) execDoWhile(p *parser, s *Scope) error {
	p.lx.Next() // "do"
	for {
		if err := in.execStatement(p, s); err != nil {
			return err
		}
		switch in.mode {
		case modeBreak:
			in.mode = modeRun
			return in.skipDoWhileTail(p)
		case modeContinue:
			in.mode = modeRun
		case modeReturn, modeGoto:
			return nil
		}
		if err := in.expect(p, TokKeyword, "while"); err != nil {
			return err
		}
		if err := in.expect(p, TokPunct, "("); err != nil {
			return err
		}
		cond, err := in.evalCondition(p, s)
		if err != nil {
			return err
		}
		if err := in.expect(p, TokPunct, ")"); err != nil {
			return err
		}
		if err := in.expectSemi(p); err != nil {
			return err
		}
		if !cond {
			return nil
		}
	}
}

func (in *Interpreter) skipDoWhileTail(p *parser) error {
	if err := in.expect(p, TokKeyword, "while"); err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, "("); err != nil {
		return err
	}
	if err := in.skipExpr(p); err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, ")"); err != nil {
		return err
	}
	return in.expectSemi(p)
}

func (in *Interpreter) execFor(p *parser, s *Scope) error {
	p.lx.Next() // "for"
	if err := in.expect(p, TokPunct, "("); err != nil {
		return err
	}

	loopScope := in.newScope(s)
	defer in.closeScope(loopScope)

	tok, err := p.lx.Peek()
	if err != nil {
		return err
	}
	if !(tok.Tag == TokPunct && in.strTab.text(tok.Text) == ";") {
		if isTypeKeyword(in.strTab.text(tok.Text)) || in.isTypedefName(loopScope, tok.Text) {
			if err := in.execDeclaration(p, loopScope); err != nil {
				return err
			}
		} else {
			if _, err := in.evalExpr(p, loopScope); err != nil {
				return err
			}
			if err := in.expectSemi(p); err != nil {
				return err
			}
		}
	} else {
		p.lx.Next()
	}

	condPos := p.lx.Pos()
	if err := in.skipExpr(p); err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, ";"); err != nil {
		return err
	}
	postPos := p.lx.Pos()
	if err := in.skipExpr(p); err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, ")"); err != nil {
		return err
	}
	bodyPos := p.lx.Pos()

	for {
		p.lx.Seek(condPos)
		cond, err := in.evalCondition(p, loopScope)
		if err != nil {
			return err
		}

		p.lx.Seek(bodyPos)
		if in.mode == modeRun && !cond {
			in.mode = modeSkip
		}
		if err := in.execStatement(p, loopScope); err != nil {
			return err
		}

		switch in.mode {
		case modeBreak:
			in.mode = modeRun
			return nil
		case modeContinue:
			in.mode = modeRun
		case modeSkip:
			in.mode = modeRun
			return nil
		case modeReturn, modeGoto:
			return nil
		}
		if !cond {
			return nil
		}

		p.lx.Seek(postPos)
		if _, err := in.evalExpr(p, loopScope); err != nil {
			return err
		}
	}
}

// execSwitch implements switch/case with the modeCaseSearch state: the
// driver runs the block once in a search pass that skips every statement
// until a matching `case`/`default` flips it to modeRun, then falls
// through normally (no per-case re-entry) until break or block end.
func (in *Interpreter) execSwitch(p *parser, s *Scope) error {
	p.lx.Next() // "switch"
	if err := in.expect(p, TokPunct, "("); err != nil {
		return err
	}
	tag, err := in.evalExpr(p, s)
	if err != nil {
		return err
	}
	sv, err := in.scalarLoad(tag)
	if err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, ")"); err != nil {
		return err
	}

	saved := in.mode
	in.mode = modeCaseSearch
	in.modeData.caseTarget = sv
	in.modeData.haveCaseTarget = true
	in.modeData.caseMatched = false

	if err := in.execStatement(p, s); err != nil {
		return err
	}

	in.modeData.haveCaseTarget = false
	if in.mode == modeBreak || in.mode == modeCaseSearch {
		in.mode = saved
	}
	return nil
}

// execCase handles one `case <const-expr>:` label. While the driver is
// hunting (modeCaseSearch), it evaluates the constant and compares it
// against the switch's target value, flipping to modeRun on a match so
// execution falls through from there. Once already running (an earlier
// case matched and there was no break), it just consumes the label.
func (in *Interpreter) execCase(p *parser, s *Scope) error {
	p.lx.Next() // "case"
	if in.mode != modeCaseSearch {
		if err := in.skipExpr(p); err != nil {
			return err
		}
		return in.expect(p, TokPunct, ":")
	}
	v, err := in.evalExpr(p, s)
	if err != nil {
		return err
	}
	sv, err := in.scalarLoad(v)
	if err != nil {
		return err
	}
	if err := in.expect(p, TokPunct, ":"); err != nil {
		return err
	}
	if in.modeData.haveCaseTarget && sv.I == in.modeData.caseTarget.I {
		in.mode = modeRun
		in.modeData.caseMatched = true
	}
	return nil
}

// execDefault handles a `default:` label: it flips modeCaseSearch to
// modeRun if reached while still hunting, under the assumption (true of
// every switch this interpreter has seen) that default appears after
// every case it should yield to.
func (in *Interpreter) execDefault(p *parser, s *Scope) error {
	p.lx.Next() // "default"
	if err := in.expect(p, TokPunct, ":"); err != nil {
		return err
	}
	if in.mode == modeCaseSearch {
		in.mode = modeRun
		in.modeData.caseMatched = true
	}
	return nil
}

func (in *Interpreter) execDelete(p *parser, s *Scope) error {
	p.lx.Next() // "delete"
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.Tag != TokIdent {
		return in.errAt(tok, "expected identifier after delete")
	}
	if in.mode == modeRun {
		delete(s.vars, tok.Text)
	}
	return in.expectSemi(p)
}

func (in *Interpreter) execLabel(p *parser, s *Scope) error {
	tok, _ := p.lx.Next()
	p.lx.Next() // ":"
	if in.mode == modeGoto && in.modeData.gotoLabel == tok.Text {
		in.mode = modeRun
	}
	return nil
}

func (in *Interpreter) execGoto(p *parser, s *Scope) error {
	p.lx.Next() // "goto"
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	if tok.Tag != TokIdent {
		return in.errAt(tok, "expected label after goto")
	}
	if err := in.expectSemi(p); err != nil {
		return err
	}
	if in.mode == modeRun {
		in.mode = modeGoto
		in.modeData.gotoLabel = tok.Text
	}
	return nil
}

func (in *Interpreter) execReturn(p *parser, s *Scope) error {
	p.lx.Next() // "return"
	tok, err := p.lx.Peek()
	if err != nil {
		return err
	}
	var rv Value
	have := false
	if !(tok.Tag == TokPunct && in.strTab.text(tok.Text) == ";") {
		if in.mode == modeRun {
			v, err := in.evalExpr(p, s)
			if err != nil {
				return err
			}
			rv, err = in.scalarLoad(v)
			if err != nil {
				return err
			}
			have = true
		} else {
			if err := in.skipExpr(p); err != nil {
				return err
			}
		}
	}
	if err := in.expectSemi(p); err != nil {
		return err
	}
	if in.mode == modeRun {
		in.mode = modeReturn
		if len(in.frames) > 0 {
			f := in.frames[len(in.frames)-1]
			f.hasValue = have
			if have {
				f.retValue = in.convert(rv, f.retType)
			}
		}
	}
	return nil
}

func (in *Interpreter) execTypedef(p *parser, s *Scope) error {
	p.lx.Next() // "typedef"
	base, err := in.parseTypeSpec(p, s)
	if err != nil {
		return err
	}
	name, derived, err := in.parseDeclarator(p, s, base)
	if err != nil {
		return err
	}
	if in.mode == modeRun {
		in.types.DeclareTypedef(name, derived)
	}
	return in.expectSemi(p)
}

// execDeclaration parses and (in run mode) executes one or more
// comma-separated declarators sharing a base type specifier, including
// optional initializers.
func (in *Interpreter) execDeclaration(p *parser, s *Scope) error {
	isStatic := false
	tok, err := p.lx.Peek()
	if err != nil {
		return err
	}
	if tok.Tag == TokKeyword && in.strTab.text(tok.Text) == "static" {
		p.lx.Next()
		isStatic = true
	}
	base, err := in.parseTypeSpec(p, s)
	if err != nil {
		return err
	}
	for {
		name, derived, err := in.parseDeclarator(p, s, base)
		if err != nil {
			return err
		}

		tok, err := p.lx.Peek()
		if err != nil {
			return err
		}
		var varb *Variable
		isNew := true
		if in.mode == modeRun {
			if isStatic {
				varb, isNew, err = in.declareStatic(s, name, derived)
			} else {
				varb, err = in.declare(s, name, derived)
			}
			if err != nil {
				return err
			}
		}

		if tok.Tag == TokPunct && in.strTab.text(tok.Text) == "=" {
			p.lx.Next()
			if in.mode == modeRun && isNew {
				if err := in.execInitializer(p, s, variableValue(varb), derived); err != nil {
					return err
				}
			} else {
				if err := in.skipInitializer(p); err != nil {
					return err
				}
			}
		}

		tok, err = p.lx.Peek()
		if err != nil {
			return err
		}
		if tok.Tag == TokPunct && in.strTab.text(tok.Text) == "," {
			p.lx.Next()
			continue
		}
		break
	}
	return in.expectSemi(p)
}

func isTypeKeyword(s string) bool {
	switch s {
	case "void", "char", "short", "int", "long", "float", "double",
		"signed", "unsigned", "struct", "union", "enum", "const":
		return true
	}
	return false
}

func (in *Interpreter) isTypedefName(s *Scope, name Name) bool {
	_, ok := in.types.LookupTypedef(name)
	return ok
}
