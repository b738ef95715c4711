package compiler

// precedenceTable groups binary operators from loosest (index 0) to
// tightest (index 6); all levels are left-associative.
var precedenceTable = [][]BinOp{
	{OpBitOr},
	{OpBitAnd},
	{OpBitShl, OpBitShr},
	{OpEqual, OpNotEqual},
	{OpLess, OpGreater, OpGreaterEqual, OpLessEqual},
	{OpPlus, OpMinus},
	{OpMult, OpMod, OpDiv},
}

func precedenceOf(op BinOp) int {
	for level, ops := range precedenceTable {
		for _, o := range ops {
			if o == op {
				return level
			}
		}
	}
	return -1
}

func binOpFromToken(kind TokenKind) (BinOp, bool) {
	switch kind {
	case PLUS:
		return OpPlus, true
	case MINUS:
		return OpMinus, true
	case STAR:
		return OpMult, true
	case SLASH:
		return OpDiv, true
	case PERCENT:
		return OpMod, true
	case LESS:
		return OpLess, true
	case GREATER:
		return OpGreater, true
	case GREATER_EQ:
		return OpGreaterEqual, true
	case LESS_EQ:
		return OpLessEqual, true
	case OR:
		return OpBitOr, true
	case AND:
		return OpBitAnd, true
	case SHL:
		return OpBitShl, true
	case SHR:
		return OpBitShr, true
	case EQUALS:
		return OpEqual, true
	case NOT_EQ:
		return OpNotEqual, true
	default:
		return 0, false
	}
}

// binOpFromAssignToken maps a compound-assignment token to the underlying
// binary operator. hasBinop is false for plain `=`.
func binOpFromAssignToken(kind TokenKind) (op BinOp, hasBinop bool, ok bool) {
	switch kind {
	case ASSIGN:
		return 0, false, true
	case SHL_ASSIGN:
		return OpBitShl, true, true
	case SHR_ASSIGN:
		return OpBitShr, true, true
	case MOD_ASSIGN:
		return OpMod, true, true
	case OR_ASSIGN:
		return OpBitOr, true, true
	case AND_ASSIGN:
		return OpBitAnd, true, true
	case PLUS_ASSIGN:
		return OpPlus, true, true
	case MINUS_ASSIGN:
		return OpMinus, true, true
	case STAR_ASSIGN:
		return OpMult, true, true
	case SLASH_ASSIGN:
		return OpDiv, true, true
	default:
		return 0, false, false
	}
}

// compileExpression parses the full expression grammar: assignment chain,
// then at most one trailing ternary.
func (c *Compiler) compileExpression() (Arg, bool, error) {
	return c.compileAssignExpression()
}

// compileBinop is the lvalue-aware write helper used by both compound
// assignment and the prefix/postfix ++/-- operators.
func (c *Compiler) compileBinop(lhs, rhs Arg, op BinOp, loc Location) {
	switch l := lhs.(type) {
	case DerefArg:
		tmp := c.autoVars.Allocate()
		c.emit(BinopOp{opBase{loc}, tmp, op, lhs, rhs})
		c.emit(StoreOp{opBase{loc}, l.Index, AutoVarArg{tmp}})
	case ExternalArg:
		tmp := c.autoVars.Allocate()
		c.emit(BinopOp{opBase{loc}, tmp, op, lhs, rhs})
		c.emit(ExternalAssignOp{opBase{loc}, l.Name, AutoVarArg{tmp}})
	case AutoVarArg:
		c.emit(BinopOp{opBase{loc}, l.Index, op, lhs, rhs})
	case BogusArg:
		// error already reported; silently absorb
	}
}

func (c *Compiler) compilePrimary() (Arg, bool, error) {
	if !c.lex.GetToken() {
		return BogusArg{}, false, errLexFailed
	}
	loc := c.lex.Loc
	switch c.lex.Kind {
	case LPAREN:
		result, isLvalue, err := c.compileExpression()
		if err != nil {
			return BogusArg{}, false, err
		}
		if err := c.getAndExpect(RPAREN); err != nil {
			return BogusArg{}, false, err
		}
		return result, isLvalue, nil

	case NOT:
		arg, _, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		res := c.autoVars.Allocate()
		c.emit(UnaryNotOp{opBase{loc}, res, arg})
		return AutoVarArg{res}, false, nil

	case STAR:
		arg, _, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		idx := c.autoVars.Allocate()
		c.emit(AutoAssignOp{opBase{loc}, idx, arg})
		return DerefArg{idx}, true, nil

	case MINUS:
		arg, _, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		idx := c.autoVars.Allocate()
		c.emit(NegateOp{opBase{loc}, idx, arg})
		return AutoVarArg{idx}, false, nil

	case AND:
		arg, argIsLvalue, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		if !argIsLvalue {
			if err := c.recoverable(loc, "cannot take the address of an rvalue"); err != nil {
				return BogusArg{}, false, err
			}
			return BogusArg{}, false, nil
		}
		switch a := arg.(type) {
		case DerefArg:
			return AutoVarArg{a.Index}, false, nil
		case ExternalArg:
			return RefExternalArg{a.Name}, false, nil
		case AutoVarArg:
			return RefAutoVarArg{a.Index}, false, nil
		case BogusArg:
			return BogusArg{}, false, nil
		default:
			return BogusArg{}, false, c.fatal(loc, "unexpected arg type in & operation")
		}

	case PLUS_PLUS:
		arg, argIsLvalue, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		if !argIsLvalue {
			if err := c.recoverable(loc, "cannot increment an rvalue"); err != nil {
				return BogusArg{}, false, err
			}
			return BogusArg{}, false, nil
		}
		c.compileBinop(arg, LiteralArg{1}, OpPlus, loc)
		return arg, false, nil

	case MINUS_MINUS:
		arg, argIsLvalue, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		if !argIsLvalue {
			if err := c.recoverable(loc, "cannot decrement an rvalue"); err != nil {
				return BogusArg{}, false, err
			}
			return BogusArg{}, false, nil
		}
		c.compileBinop(arg, LiteralArg{1}, OpMinus, loc)
		return arg, false, nil

	case INTLIT, CHARLIT:
		return LiteralArg{c.lex.IntValue}, false, nil

	case IDENT:
		name := c.lex.StringValue
		b, ok := c.scopes.FindDeep(name)
		if !ok {
			if err := c.recoverable(loc, "could not find name `%s`", name); err != nil {
				return BogusArg{}, true, err
			}
			return BogusArg{}, true, nil
		}
		if b.Storage == StorageAuto {
			return AutoVarArg{b.Index}, true, nil
		}
		return ExternalArg{b.ExternalName}, true, nil

	case STRING:
		offset := c.compileString(c.lex.StringValue)
		return DataOffsetArg{offset}, false, nil

	default:
		return BogusArg{}, false, c.fatal(loc, "expected start of a primary expression but got %s", c.lex.Kind.Display())
	}
}

// compilePrimaryPostfix consumes any run of call/subscript/post-inc/post-dec
// suffixes following a primary expression.
func (c *Compiler) compilePrimaryPostfix(result Arg, isLvalue bool) (Arg, bool, error) {
	for {
		saved := c.lex.Snapshot()
		if !c.lex.GetToken() {
			return BogusArg{}, false, errLexFailed
		}
		switch c.lex.Kind {
		case LPAREN:
			r, err := c.compileFunctionCall(result)
			if err != nil {
				return BogusArg{}, false, err
			}
			result = r
			isLvalue = false

		case LBRACKET:
			offset, _, err := c.compileExpression()
			if err != nil {
				return BogusArg{}, false, err
			}
			if err := c.getAndExpect(RBRACKET); err != nil {
				return BogusArg{}, false, err
			}
			loc := c.lex.Loc
			res := c.autoVars.Allocate()
			c.emit(BinopOp{opBase{loc}, res, OpMult, offset, LiteralArg{8}})
			c.emit(BinopOp{opBase{loc}, res, OpPlus, result, AutoVarArg{res}})
			result = DerefArg{res}
			isLvalue = true

		case PLUS_PLUS:
			loc := c.lex.Loc
			if !isLvalue {
				if err := c.recoverable(loc, "cannot increment an rvalue"); err != nil {
					return BogusArg{}, false, err
				}
				return BogusArg{}, false, nil
			}
			pre := c.autoVars.Allocate()
			c.emit(AutoAssignOp{opBase{loc}, pre, result})
			c.compileBinop(result, LiteralArg{1}, OpPlus, loc)
			result = AutoVarArg{pre}
			isLvalue = false

		case MINUS_MINUS:
			loc := c.lex.Loc
			if !isLvalue {
				if err := c.recoverable(loc, "cannot decrement an rvalue"); err != nil {
					return BogusArg{}, false, err
				}
				return BogusArg{}, false, nil
			}
			pre := c.autoVars.Allocate()
			c.emit(AutoAssignOp{opBase{loc}, pre, result})
			c.compileBinop(result, LiteralArg{1}, OpMinus, loc)
			result = AutoVarArg{pre}
			isLvalue = false

		default:
			c.lex.Restore(saved)
			return result, isLvalue, nil
		}
	}
}

func (c *Compiler) compileFunctionCall(fun Arg) (Arg, error) {
	var args []Arg
	saved := c.lex.Snapshot()
	if !c.lex.GetToken() {
		return BogusArg{}, errLexFailed
	}
	if c.lex.Kind != RPAREN {
		c.lex.Restore(saved)
		for {
			arg, _, err := c.compileExpression()
			if err != nil {
				return BogusArg{}, err
			}
			args = append(args, arg)
			if !c.lex.GetToken() {
				return BogusArg{}, errLexFailed
			}
			if c.lex.Kind == RPAREN {
				break
			}
			if c.lex.Kind != COMMA {
				return BogusArg{}, c.fatal(c.lex.Loc, "expected `)` or `,`")
			}
		}
	}
	res := c.autoVars.Allocate()
	c.emit(FuncallOp{opBase{c.lex.Loc}, res, fun, args})
	return AutoVarArg{res}, nil
}

// compileBinopExpression implements the precedence-climbing ladder: at
// precedence >= len(precedenceTable) it bottoms out at a primary+postfix
// expression, otherwise it recurses one level tighter and then consumes a
// left-associative run of operators at exactly this level.
func (c *Compiler) compileBinopExpression(precedence int) (Arg, bool, error) {
	if precedence >= len(precedenceTable) {
		result, isLvalue, err := c.compilePrimary()
		if err != nil {
			return BogusArg{}, false, err
		}
		return c.compilePrimaryPostfix(result, isLvalue)
	}
	result, isLvalue, err := c.compileBinopExpression(precedence + 1)
	if err != nil {
		return BogusArg{}, false, err
	}
	for {
		saved := c.lex.Snapshot()
		if !c.lex.GetToken() {
			return BogusArg{}, false, errLexFailed
		}
		op, ok := binOpFromToken(c.lex.Kind)
		if !ok || precedenceOf(op) != precedence {
			c.lex.Restore(saved)
			break
		}
		loc := c.lex.Loc
		rhs, _, err := c.compileBinopExpression(precedence + 1)
		if err != nil {
			return BogusArg{}, false, err
		}
		idx := c.autoVars.Allocate()
		c.emit(BinopOp{opBase{loc}, idx, op, result, rhs})
		result = AutoVarArg{idx}
		isLvalue = false
	}
	return result, isLvalue, nil
}

// compileAssignExpression parses the right-associative compound-assignment
// chain above the binop ladder, then at most one trailing ternary.
func (c *Compiler) compileAssignExpression() (Arg, bool, error) {
	result, isLvalue, err := c.compileBinopExpression(0)
	if err != nil {
		return BogusArg{}, false, err
	}

	for {
		saved := c.lex.Snapshot()
		if !c.lex.GetToken() {
			return BogusArg{}, false, errLexFailed
		}
		op, hasBinop, ok := binOpFromAssignToken(c.lex.Kind)
		if !ok {
			c.lex.Restore(saved)
			break
		}
		loc := c.lex.Loc
		rhs, _, err := c.compileAssignExpression()
		if err != nil {
			return BogusArg{}, false, err
		}
		if !isLvalue {
			if err := c.recoverable(loc, "cannot assign to rvalue"); err != nil {
				return BogusArg{}, false, err
			}
			return BogusArg{}, false, nil
		}
		if hasBinop {
			c.compileBinop(result, rhs, op, loc)
		} else {
			switch r := result.(type) {
			case DerefArg:
				c.emit(StoreOp{opBase{loc}, r.Index, rhs})
			case ExternalArg:
				c.emit(ExternalAssignOp{opBase{loc}, r.Name, rhs})
			case AutoVarArg:
				c.emit(AutoAssignOp{opBase{loc}, r.Index, rhs})
			case BogusArg:
				// error already reported; silently absorb
			}
		}
		isLvalue = false
	}

	saved := c.lex.Snapshot()
	if !c.lex.GetToken() {
		return BogusArg{}, false, errLexFailed
	}
	if c.lex.Kind != QUESTION {
		c.lex.Restore(saved)
		return result, isLvalue, nil
	}

	res := c.autoVars.Allocate()
	elseLabel := c.labels.Allocate()
	c.emit(JmpIfNotLabelOp{opBase{c.lex.Loc}, elseLabel, result})
	ifTrue, _, err := c.compileExpression()
	if err != nil {
		return BogusArg{}, false, err
	}
	c.emit(AutoAssignOp{opBase{c.lex.Loc}, res, ifTrue})
	outLabel := c.labels.Allocate()
	c.emit(JmpLabelOp{opBase{c.lex.Loc}, outLabel})
	if err := c.getAndExpect(COLON); err != nil {
		return BogusArg{}, false, err
	}
	c.emit(LabelOp{opBase{c.lex.Loc}, elseLabel})
	ifFalse, _, err := c.compileExpression()
	if err != nil {
		return BogusArg{}, false, err
	}
	c.emit(AutoAssignOp{opBase{c.lex.Loc}, res, ifFalse})
	c.emit(LabelOp{opBase{c.lex.Loc}, outLabel})
	return AutoVarArg{res}, false, nil
}
