package compiler

import (
	"errors"
	"fmt"
	"os"
)

var (
	// errLexFailed wraps a hard lexical error; the lexer has already
	// printed its own diagnostic, so this carries no message of its own.
	errLexFailed = errors.New("lexical error")
	// errTooManyErrors is returned once the recoverable-error counter
	// reaches its ceiling; it aborts the whole compilation.
	errTooManyErrors = errors.New("too many errors")
)

type gotoLabel struct {
	Name  string
	Loc   Location
	Label int
}

type pendingGoto struct {
	Name string
	Loc  Location
	Addr int
}

// Compiler holds every piece of process-wide state threaded through a
// single compilation: the scope stack, the current function's temporaries
// and body, the program's data segment, and the accumulated error count.
type Compiler struct {
	lex    *Lexer
	scopes *ScopeTable

	autoVars AutoVarAllocator
	labels   LabelAllocator

	funcBody       []Opcode
	funcGotoLabels []gotoLabel
	funcGotos      []pendingGoto

	data    []byte
	extrns  []string
	globals []*Global
	funcs   []*Function

	target     Target
	errorCount int
}

func NewCompiler(target Target) *Compiler {
	return &Compiler{scopes: NewScopeTable(), target: target}
}

// ErrorCount is the number of recoverable errors reported so far.
func (c *Compiler) ErrorCount() int { return c.errorCount }

func (c *Compiler) emit(op Opcode) {
	c.funcBody = append(c.funcBody, op)
}

func (c *Compiler) compileString(s string) int {
	offset := len(c.data)
	c.data = append(c.data, s...)
	c.data = append(c.data, 0)
	return offset
}

func (c *Compiler) errorf(loc Location, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: ERROR: %s\n", loc, fmt.Sprintf(format, args...))
}

func (c *Compiler) notef(loc Location, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: NOTE: %s\n", loc, fmt.Sprintf(format, args...))
}

// fatal reports and returns an error that must unwind the whole compile.
func (c *Compiler) fatal(loc Location, format string, args ...any) error {
	c.errorf(loc, format, args...)
	return fmt.Errorf(format, args...)
}

// bumpError increments the recoverable-error counter, escalating to a
// fatal abort once it reaches 100.
func (c *Compiler) bumpError() error {
	c.errorCount++
	if c.errorCount >= 100 {
		fmt.Fprintln(os.Stderr, "TOO MANY ERRORS! Fix your program!")
		return errTooManyErrors
	}
	return nil
}

// recoverable reports a diagnostic and bumps the error counter. The
// returned error is nil unless the counter just hit its ceiling, in which
// case the caller must abort instead of continuing with a Bogus value.
func (c *Compiler) recoverable(loc Location, format string, args ...any) error {
	c.errorf(loc, format, args...)
	return c.bumpError()
}

// declare adds b to the innermost scope, reporting Redefinition as a
// recoverable error (with a NOTE pointing at the first declaration) if the
// name already exists in that frame.
func (c *Compiler) declare(b Binding) error {
	existing, ok := c.scopes.Declare(b)
	if ok {
		return nil
	}
	c.errorf(b.Loc, "redefinition of variable `%s`", b.Name)
	c.notef(existing.Loc, "the first declaration is located here")
	return c.bumpError()
}

func (c *Compiler) expectToken(kind TokenKind) error {
	if c.lex.Kind != kind {
		return c.fatal(c.lex.Loc, "expected %s, but got %s", kind.Display(), c.lex.Kind.Display())
	}
	return nil
}

func (c *Compiler) getAndExpect(kind TokenKind) error {
	if !c.lex.GetToken() {
		return errLexFailed
	}
	return c.expectToken(kind)
}

// Compile lexes and parses src (identified by path for diagnostics),
// producing a Program. A non-nil error means compilation was aborted by a
// Fatal error or by the 100-error ceiling; a nil error with a non-zero
// ErrorCount means the program still compiled with only recoverable
// errors, per the seed scenarios' "k <= 99 errors still yields a program"
// contract.
func Compile(path string, src []byte, target Target) (*Program, error) {
	c := NewCompiler(target)
	c.lex = NewLexer(path, src)
	if err := c.compileProgram(); err != nil {
		return nil, err
	}
	return &Program{
		Functions:  c.funcs,
		Externs:    c.extrns,
		Globals:    c.globals,
		Data:       c.data,
		Target:     c.target,
		ErrorCount: c.errorCount,
	}, nil
}

// compileProgram is the Program Compiler: the top-level loop that
// dispatches each top-level identifier to a function or a global
// definition.
func (c *Compiler) compileProgram() error {
	c.scopes.PushScope()
	for {
		if !c.lex.GetToken() {
			return errLexFailed
		}
		if c.lex.Kind == EOF {
			break
		}
		if err := c.expectToken(IDENT); err != nil {
			return err
		}
		name := c.lex.StringValue
		nameLoc := c.lex.Loc
		saved := c.lex.Snapshot()
		if !c.lex.GetToken() {
			return errLexFailed
		}
		if c.lex.Kind == LPAREN {
			if err := c.compileFunction(name, nameLoc); err != nil {
				return err
			}
			continue
		}
		c.lex.Restore(saved)
		if err := c.compileGlobal(name, nameLoc); err != nil {
			return err
		}
	}
	c.scopes.PopScope()
	return nil
}

// compileFunction parses and compiles one `name(params) { body }` and
// appends the finished Function to the program.
func (c *Compiler) compileFunction(name string, nameLoc Location) error {
	if err := c.declare(Binding{Name: name, Loc: nameLoc, Storage: StorageExternal, ExternalName: name}); err != nil {
		return err
	}
	c.scopes.PushScope()

	paramsCount := 0
	saved := c.lex.Snapshot()
	if !c.lex.GetToken() {
		return errLexFailed
	}
	if c.lex.Kind != RPAREN {
		c.lex.Restore(saved)
		for {
			if err := c.getAndExpect(IDENT); err != nil {
				return err
			}
			paramName := c.lex.StringValue
			paramLoc := c.lex.Loc
			index := c.autoVars.Allocate()
			if err := c.declare(Binding{Name: paramName, Loc: paramLoc, Storage: StorageAuto, Index: index}); err != nil {
				return err
			}
			paramsCount++
			if !c.lex.GetToken() {
				return errLexFailed
			}
			if c.lex.Kind == RPAREN {
				break
			}
			if c.lex.Kind != COMMA {
				return c.fatal(c.lex.Loc, "expected `)` or `,`")
			}
		}
	}

	if err := c.compileStatement(); err != nil {
		return err
	}
	c.scopes.PopScope()

	for _, g := range c.funcGotos {
		found := false
		for _, l := range c.funcGotoLabels {
			if g.Name == l.Name {
				c.funcBody[g.Addr] = JmpLabelOp{opBase{c.funcBody[g.Addr].Location()}, l.Label}
				found = true
				break
			}
		}
		if !found {
			if err := c.recoverable(g.Loc, "label `%s` used but not defined", g.Name); err != nil {
				return err
			}
		}
	}

	c.funcs = append(c.funcs, &Function{
		Name:          name,
		NameLoc:       nameLoc,
		Body:          c.funcBody,
		ParamsCount:   paramsCount,
		AutoVarsCount: c.autoVars.Max(),
	})

	c.funcBody = nil
	c.funcGotoLabels = nil
	c.funcGotos = nil
	c.autoVars.Reset()
	c.labels.Reset()
	return nil
}

// compileGlobal parses and compiles one `name [ [size] ] inits... ;`.
func (c *Compiler) compileGlobal(name string, nameLoc Location) error {
	if err := c.declare(Binding{Name: name, Loc: nameLoc, Storage: StorageExternal, ExternalName: name}); err != nil {
		return err
	}
	g := &Global{Name: name}

	if !c.lex.GetToken() {
		return errLexFailed
	}
	if c.lex.Kind == LBRACKET {
		g.IsVec = true
		if !c.lex.GetToken() {
			return errLexFailed
		}
		switch c.lex.Kind {
		case INTLIT:
			g.MinimumSize = int(c.lex.IntValue)
			if err := c.getAndExpect(RBRACKET); err != nil {
				return err
			}
		case RBRACKET:
		default:
			return c.fatal(c.lex.Loc, "expected integer or `]`")
		}
		if !c.lex.GetToken() {
			return errLexFailed
		}
	}

	for c.lex.Kind != SEMICOLON {
		var val ImmediateValue
		switch c.lex.Kind {
		case INTLIT, CHARLIT:
			val = LiteralValue{c.lex.IntValue}
		case STRING:
			val = DataOffsetValue{c.compileString(c.lex.StringValue)}
		case IDENT:
			val = NameValue{c.lex.StringValue}
		default:
			return c.fatal(c.lex.Loc, "expected integer, string, or identifier")
		}
		g.Values = append(g.Values, val)
		if !c.lex.GetToken() {
			return errLexFailed
		}
		if c.lex.Kind == COMMA {
			if !c.lex.GetToken() {
				return errLexFailed
			}
		}
	}

	if !g.IsVec && len(g.Values) == 0 {
		g.Values = append(g.Values, LiteralValue{0})
	}
	c.globals = append(c.globals, g)
	return nil
}
