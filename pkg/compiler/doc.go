// Package compiler lexes and compiles B source into a three-address IR
// program: no separate AST or code-generation pass, opcodes are emitted
// directly as the recursive-descent parser consumes the token stream.
//
// Pipeline: B source -> Lexer -> Program Compiler (-> Statement Compiler
// -> Expression Compiler) -> Program.
package compiler
