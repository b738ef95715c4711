// Package irprint renders a compiled Program as the textual IR format:
// a Functions section, an External Symbols section, a Global Variables
// section, and — when the data segment is non-empty — a Data Section hex
// dump.
package irprint

import (
	"fmt"
	"strings"

	"bcompile/pkg/compiler"
)

// Print renders prog in the textual IR format.
func Print(prog *compiler.Program) string {
	var b strings.Builder
	writeFunctions(&b, prog.Functions)
	writeExterns(&b, prog.Externs)
	writeGlobals(&b, prog.Globals)
	writeDataSection(&b, prog.Data)
	return b.String()
}

func writeFunctions(b *strings.Builder, funcs []*compiler.Function) {
	b.WriteString("-- Functions --\n\n")
	for _, fn := range funcs {
		writeFunction(b, fn)
	}
}

func writeFunction(b *strings.Builder, fn *compiler.Function) {
	fmt.Fprintf(b, "%s(%d, %d):\n", fn.Name, fn.ParamsCount, fn.AutoVarsCount)
	for i, op := range fn.Body {
		fmt.Fprintf(b, "%8d:", i)
		writeOpcode(b, op)
	}
}

func writeOpcode(b *strings.Builder, op compiler.Opcode) {
	switch o := op.(type) {
	case compiler.BogusOp:
		b.WriteString("    <bogus>\n")

	case compiler.ReturnOp:
		b.WriteString("    return ")
		if o.HasArg {
			writeArg(b, o.Arg)
		}
		b.WriteString("\n")

	case compiler.StoreOp:
		fmt.Fprintf(b, "    store deref[%d], ", o.Index)
		writeArg(b, o.Arg)
		b.WriteString("\n")

	case compiler.ExternalAssignOp:
		b.WriteString("    ")
		b.WriteString(o.Name)
		b.WriteString(" = ")
		writeArg(b, o.Arg)
		b.WriteString("\n")

	case compiler.AutoAssignOp:
		fmt.Fprintf(b, "    auto[%d] = ", o.Index)
		writeArg(b, o.Arg)
		b.WriteString("\n")

	case compiler.NegateOp:
		fmt.Fprintf(b, "    auto[%d] = -", o.Result)
		writeArg(b, o.Arg)
		b.WriteString("\n")

	case compiler.UnaryNotOp:
		fmt.Fprintf(b, "    auto[%d] = !", o.Result)
		writeArg(b, o.Arg)
		b.WriteString("\n")

	case compiler.BinopOp:
		fmt.Fprintf(b, "    auto[%d] = ", o.Index)
		writeArg(b, o.Arg1)
		b.WriteString(o.Op.String())
		writeArg(b, o.Arg2)
		b.WriteString("\n")

	case compiler.FuncallOp:
		fmt.Fprintf(b, "    auto[%d] = ", o.Result)
		writeArgCall(b, o.Fun)
		for _, a := range o.Args {
			b.WriteString(", ")
			writeArg(b, a)
		}
		b.WriteString(")\n")

	case compiler.AsmOp:
		b.WriteString("    __asm__(\n")
		for _, line := range o.Lines {
			b.WriteString("        ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("    )\n")

	case compiler.LabelOp:
		fmt.Fprintf(b, "    label[%d]\n", o.Label)

	case compiler.JmpLabelOp:
		fmt.Fprintf(b, "    jmp label[%d]\n", o.Label)

	case compiler.JmpIfNotLabelOp:
		fmt.Fprintf(b, "    jmp_if_not label[%d], ", o.Label)
		writeArg(b, o.Arg)
		b.WriteString("\n")
	}
}

func writeArg(b *strings.Builder, arg compiler.Arg) {
	b.WriteString(arg.String())
}

// writeArgCall renders the callee of a Funcall. A call through a name
// (External or RefExternal) prints as call("name"); anything else falls
// back to call(<arg>). The caller appends ", arg, arg)" itself, so this
// function's own closing paren and the tail's closing paren both appear
// in the final output — that double-close is how the one reference IR
// printer in this lineage renders a call, and is kept deliberately.
func writeArgCall(b *strings.Builder, arg compiler.Arg) {
	switch a := arg.(type) {
	case compiler.ExternalArg:
		fmt.Fprintf(b, "call(%q)", a.Name)
	case compiler.RefExternalArg:
		fmt.Fprintf(b, "call(%q)", a.Name)
	default:
		b.WriteString("call(")
		writeArg(b, arg)
		b.WriteString(")")
	}
}

func writeExterns(b *strings.Builder, extrns []string) {
	b.WriteString("\n-- External Symbols --\n\n")
	for _, name := range extrns {
		b.WriteString("    ")
		b.WriteString(name)
		b.WriteString("\n")
	}
}

func writeGlobals(b *strings.Builder, globals []*compiler.Global) {
	b.WriteString("\n-- Global Variables --\n\n")
	for _, g := range globals {
		b.WriteString(g.Name)
		if g.IsVec {
			fmt.Fprintf(b, "[%d]", g.MinimumSize)
		}
		b.WriteString(": ")
		for j, val := range g.Values {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(val.String())
		}
		b.WriteString("\n")
	}
}

const dataRowSize = 12

func writeDataSection(b *strings.Builder, data []byte) {
	if len(data) == 0 {
		return
	}
	b.WriteString("\n-- Data Section --\n\n")
	for i := 0; i < len(data); i += dataRowSize {
		fmt.Fprintf(b, "%04X:", i)
		end := i + dataRowSize
		for j := i; j < end; j++ {
			if j < len(data) {
				fmt.Fprintf(b, " %02X", data[j])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" | ")
		for j := i; j < end && j < len(data); j++ {
			ch := data[j]
			if ch >= 32 && ch <= 126 {
				b.WriteByte(ch)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("\n")
	}
}
