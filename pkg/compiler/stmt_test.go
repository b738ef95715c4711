package compiler

import "testing"

func TestIfWithoutElse(t *testing.T) {
	prog := mustCompile(t, `f(a) { if (a) return (1); return (0); }`)
	fn := prog.Functions[0]
	var jmpIfNot, labels, jmp int
	for _, op := range fn.Body {
		switch op.(type) {
		case JmpIfNotLabelOp:
			jmpIfNot++
		case LabelOp:
			labels++
		case JmpLabelOp:
			jmp++
		}
	}
	if jmpIfNot != 1 || labels != 1 || jmp != 0 {
		t.Errorf("if-without-else: jmpIfNot=%d labels=%d jmp=%d, want 1,1,0", jmpIfNot, labels, jmp)
	}
}

func TestIfWithElse(t *testing.T) {
	prog := mustCompile(t, `f(a) { if (a) return (1); else return (0); }`)
	fn := prog.Functions[0]
	var jmpIfNot, labels, jmp int
	for _, op := range fn.Body {
		switch op.(type) {
		case JmpIfNotLabelOp:
			jmpIfNot++
		case LabelOp:
			labels++
		case JmpLabelOp:
			jmp++
		}
	}
	if jmpIfNot != 1 || labels != 2 || jmp != 1 {
		t.Errorf("if-with-else: jmpIfNot=%d labels=%d jmp=%d, want 1,2,1", jmpIfNot, labels, jmp)
	}
}

func TestExtrnDeduplicates(t *testing.T) {
	prog := mustCompile(t, `f() { extrn putchar; extrn putchar; putchar(1); }`)
	if len(prog.Externs) != 1 {
		t.Fatalf("Externs = %v, want a single deduplicated entry", prog.Externs)
	}
}

func TestDuplicateLabelIsRecoverable(t *testing.T) {
	prog, err := Compile("test.b", []byte(`f() { a: a: return; }`), TargetIR)
	if err != nil {
		t.Fatalf("expected a duplicate label to be recoverable, got error: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected the function to still compile")
	}
}

func TestBlockScopingReleasesAutoSlots(t *testing.T) {
	prog := mustCompile(t, `f() { { auto x; x = 1; } { auto y; y = 2; } return (0); }`)
	fn := prog.Functions[0]
	if fn.AutoVarsCount != 1 {
		t.Fatalf("AutoVarsCount = %d, want 1 (sibling blocks reuse the same slot)", fn.AutoVarsCount)
	}
}

func TestReturnWithoutValue(t *testing.T) {
	prog := mustCompile(t, `f() { return; }`)
	fn := prog.Functions[0]
	ret, ok := fn.Body[0].(ReturnOp)
	if !ok || ret.HasArg {
		t.Fatalf("body[0] = %#v, want ReturnOp{HasArg: false}", fn.Body[0])
	}
}

func TestEmptyStatement(t *testing.T) {
	prog := mustCompile(t, `f() { ;; return (0); }`)
	fn := prog.Functions[0]
	if _, ok := fn.Body[0].(ReturnOp); !ok {
		t.Fatalf("body = %#v, want empty statements to emit nothing", fn.Body)
	}
}
