// Package bytecode provides the execution pipeline for the Blocks
// language: a single-pass compiler from the parsed AST to a linear
// integer-coded program, a table-driven disassembler, and a stack-based
// virtual machine with first-class closures and tail-call optimization.
//
// The bytecode format is designed for:
//   - Dense representation (32-bit opcodes with inline 32-bit operands)
//   - Fast decoding (fixed operand counts per opcode, table-driven)
//   - Easy serialization (see the dist subpackage for the CBOR wire
//     format used by the compile cache)
//
// # Architecture Overview
//
//   - Opcodes: 18 stack-based instructions covering constants, variable
//     access at local/upvalue/global sites, one pooled binary-operator
//     dispatch, control flow, closure creation and four call forms.
//
//   - Program: the immutable compile artifact. Code and sourceMap are
//     parallel arrays, so every slot — opcode or operand — maps back to
//     the 1-based source line that produced it.
//
//   - Compiler: resolves every variable reference statically against a
//     stack of lexical scopes. A write inside a block that resolves to
//     nothing implicitly declares a new local; writes at the top level
//     go to globals. `name = [block]` binds the name before the body
//     compiles, which is what makes self-recursion work.
//
//   - VM: a flat 4096-slot operand stack shared across calls, a frame
//     stack recording only return address and environment, and a chain
//     of runtime environments for lexical capture. Tail calls reuse the
//     current frame, so tail recursion — the only iteration mechanism
//     in the language — runs in constant stack space.
//
// # Conditionals and thunks
//
// Branch bodies are written as bracketed block literals, so each branch
// of an if pushes a closure rather than its value. The compiler emits
// CALL_IF_CLOSURE after every branch: callables are invoked with zero
// arguments, anything else passes through unchanged. A native in branch
// position is invoked too, matching the reference behavior.
//
// # Faults
//
// There is no user-visible exception handling. Stack overflow or
// underflow, undefined global reads, broken upvalue chains, division or
// modulo by zero, invalid operand combinations and uncallable call
// targets all abort the run with a RuntimeError carrying the source
// line mapped from the faulting instruction.
package bytecode
