package compiler

// compileBlock compiles a `{ stmt... }` body: push a scope, compile each
// statement, restore the temp-allocator count on exit so sibling blocks can
// reuse the same slots, then pop the scope.
func (c *Compiler) compileBlock() error {
	c.scopes.PushScope()
	snapshot := c.autoVars.Snapshot()

	for {
		saved := c.lex.Snapshot()
		if !c.lex.GetToken() {
			return errLexFailed
		}
		if c.lex.Kind == RBRACE {
			break
		}
		c.lex.Restore(saved)
		if err := c.compileStatement(); err != nil {
			return err
		}
	}

	c.autoVars.Restore(snapshot)
	c.scopes.PopScope()
	return nil
}

// compileStatement is the Statement Compiler: it consumes exactly one
// statement and emits its opcodes into the current function body.
func (c *Compiler) compileStatement() error {
	stmtStart := c.lex.Snapshot()
	if !c.lex.GetToken() {
		return errLexFailed
	}
	loc := c.lex.Loc

	switch c.lex.Kind {
	case LBRACE:
		return c.compileBlock()

	case EXTRN:
		for {
			if err := c.getAndExpect(IDENT); err != nil {
				return err
			}
			name := c.lex.StringValue
			nameLoc := c.lex.Loc
			found := false
			for _, e := range c.extrns {
				if e == name {
					found = true
					break
				}
			}
			if !found {
				c.extrns = append(c.extrns, name)
			}
			if err := c.declare(Binding{Name: name, Loc: nameLoc, Storage: StorageExternal, ExternalName: name}); err != nil {
				return err
			}
			if !c.lex.GetToken() {
				return errLexFailed
			}
			if c.lex.Kind == SEMICOLON {
				break
			}
			if c.lex.Kind != COMMA {
				return c.fatal(c.lex.Loc, "expected `;` or `,`")
			}
		}
		return nil

	case AUTO:
		for {
			if err := c.getAndExpect(IDENT); err != nil {
				return err
			}
			name := c.lex.StringValue
			nameLoc := c.lex.Loc
			index := c.autoVars.Allocate()
			if err := c.declare(Binding{Name: name, Loc: nameLoc, Storage: StorageAuto, Index: index}); err != nil {
				return err
			}

			if !c.lex.GetToken() {
				return errLexFailed
			}
			if c.lex.Kind == INTLIT || c.lex.Kind == CHARLIT {
				size := c.lex.IntValue
				if size == 0 {
					return c.fatal(c.lex.Loc, "automatic vector of size 0 not supported")
				}
				for i := uint64(0); i < size; i++ {
					c.autoVars.Allocate()
				}
				c.emit(AutoAssignOp{opBase{c.lex.Loc}, index, RefAutoVarArg{index + int(size)}})
				if !c.lex.GetToken() {
					return errLexFailed
				}
			}
			if c.lex.Kind == SEMICOLON {
				break
			}
			if c.lex.Kind != COMMA {
				return c.fatal(c.lex.Loc, "expected `;` or `,`")
			}
		}
		return nil

	case IF:
		if err := c.getAndExpect(LPAREN); err != nil {
			return err
		}
		savedAuto := c.autoVars.Snapshot()
		cond, _, err := c.compileExpression()
		if err != nil {
			return err
		}
		c.autoVars.Restore(savedAuto)
		if err := c.getAndExpect(RPAREN); err != nil {
			return err
		}
		elseLabel := c.labels.Allocate()
		c.emit(JmpIfNotLabelOp{opBase{loc}, elseLabel, cond})
		if err := c.compileStatement(); err != nil {
			return err
		}

		saved := c.lex.Snapshot()
		if !c.lex.GetToken() {
			return errLexFailed
		}
		if c.lex.Kind == ELSE {
			outLabel := c.labels.Allocate()
			c.emit(JmpLabelOp{opBase{c.lex.Loc}, outLabel})
			c.emit(LabelOp{opBase{c.lex.Loc}, elseLabel})
			if err := c.compileStatement(); err != nil {
				return err
			}
			c.emit(LabelOp{opBase{c.lex.Loc}, outLabel})
		} else {
			c.lex.Restore(saved)
			c.emit(LabelOp{opBase{c.lex.Loc}, elseLabel})
		}
		return nil

	case WHILE:
		topLabel := c.labels.Allocate()
		c.emit(LabelOp{opBase{loc}, topLabel})
		if err := c.getAndExpect(LPAREN); err != nil {
			return err
		}
		savedAuto := c.autoVars.Snapshot()
		cond, _, err := c.compileExpression()
		if err != nil {
			return err
		}
		c.autoVars.Restore(savedAuto)
		if err := c.getAndExpect(RPAREN); err != nil {
			return err
		}
		outLabel := c.labels.Allocate()
		c.emit(JmpIfNotLabelOp{opBase{loc}, outLabel, cond})
		if err := c.compileStatement(); err != nil {
			return err
		}
		c.emit(JmpLabelOp{opBase{c.lex.Loc}, topLabel})
		c.emit(LabelOp{opBase{c.lex.Loc}, outLabel})
		return nil

	case RETURN:
		if !c.lex.GetToken() {
			return errLexFailed
		}
		if c.lex.Kind == SEMICOLON {
			c.emit(ReturnOp{opBase{loc}, false, nil})
			return nil
		}
		if c.lex.Kind != LPAREN {
			return c.fatal(c.lex.Loc, "expected `;` or `(`")
		}
		val, _, err := c.compileExpression()
		if err != nil {
			return err
		}
		if err := c.getAndExpect(RPAREN); err != nil {
			return err
		}
		if err := c.getAndExpect(SEMICOLON); err != nil {
			return err
		}
		c.emit(ReturnOp{opBase{loc}, true, val})
		return nil

	case GOTO:
		if err := c.getAndExpect(IDENT); err != nil {
			return err
		}
		name := c.lex.StringValue
		if err := c.getAndExpect(SEMICOLON); err != nil {
			return err
		}
		addr := len(c.funcBody)
		c.emit(BogusOp{opBase{loc}})
		c.funcGotos = append(c.funcGotos, pendingGoto{Name: name, Loc: loc, Addr: addr})
		return nil

	case SEMICOLON:
		return nil

	default:
		if c.lex.Kind == IDENT {
			name := c.lex.StringValue
			saved := c.lex.Snapshot()
			if !c.lex.GetToken() {
				return errLexFailed
			}
			if c.lex.Kind == COLON {
				label := c.labels.Allocate()
				c.emit(LabelOp{opBase{loc}, label})
				for _, l := range c.funcGotoLabels {
					if l.Name == name {
						c.errorf(loc, "label `%s` is already defined", name)
						c.notef(l.Loc, "the first definition is located here")
						return c.bumpError()
					}
				}
				c.funcGotoLabels = append(c.funcGotoLabels, gotoLabel{Name: name, Loc: loc, Label: label})
				return nil
			}
			c.lex.Restore(saved)
		}
		c.lex.Restore(stmtStart)
		savedAuto := c.autoVars.Snapshot()
		_, _, err := c.compileExpression()
		if err != nil {
			return err
		}
		c.autoVars.Restore(savedAuto)
		return c.getAndExpect(SEMICOLON)
	}
}
