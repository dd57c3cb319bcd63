package bytecode

import "fmt"

// ConstKind discriminates the constant pool entry variants.
type ConstKind int

const (
	// ConstInt is an integer literal.
	ConstInt ConstKind = iota

	// ConstStr is a string literal, identifier name or operator symbol.
	ConstStr

	// ConstParams is an ordered parameter-name list attached to a
	// MAKE_BLOCK instruction.
	ConstParams
)

// String returns a human-readable name for the constant kind.
func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstStr:
		return "str"
	case ConstParams:
		return "params"
	default:
		return fmt.Sprintf("ConstKind(%d)", int(k))
	}
}

// Constant is a single constant pool entry.
type Constant struct {
	Kind   ConstKind `cbor:"kind"`
	Int    int64     `cbor:"int,omitempty"`
	Str    string    `cbor:"str,omitempty"`
	Params []string  `cbor:"params,omitempty"`
}

// Value converts a scalar pool entry to a runtime value. Param lists
// are not values; pushing one is a compiler bug.
func (c Constant) Value() (Value, error) {
	switch c.Kind {
	case ConstInt:
		return IntValue(c.Int), nil
	case ConstStr:
		return StrValue(c.Str), nil
	default:
		return NilValue(), fmt.Errorf("pool entry of kind %s is not a value", c.Kind)
	}
}

// Program is the immutable artifact produced by the compiler: a dense
// 32-bit code array with inline operands, the constant pool it
// references, and a source-map array parallel to the code mapping every
// slot back to the 1-based source line that produced it.
type Program struct {
	Code      []int32    `cbor:"code"`
	Pool      []Constant `cbor:"pool"`
	SourceMap []int32    `cbor:"sourceMap"`
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		Code:      make([]int32, 0, 64),
		Pool:      make([]Constant, 0, 8),
		SourceMap: make([]int32, 0, 64),
	}
}

// AddInt interns an integer into the pool and returns its index.
// Integer entries dedupe on equality.
func (p *Program) AddInt(v int64) int32 {
	for i, c := range p.Pool {
		if c.Kind == ConstInt && c.Int == v {
			return int32(i)
		}
	}
	p.Pool = append(p.Pool, Constant{Kind: ConstInt, Int: v})
	return int32(len(p.Pool) - 1)
}

// AddStr interns a string into the pool and returns its index. String
// literals, identifier names and operator symbols share entries; they
// dedupe on equality.
func (p *Program) AddStr(s string) int32 {
	for i, c := range p.Pool {
		if c.Kind == ConstStr && c.Str == s {
			return int32(i)
		}
	}
	p.Pool = append(p.Pool, Constant{Kind: ConstStr, Str: s})
	return int32(len(p.Pool) - 1)
}

// AddParams appends a parameter-name list to the pool and returns its
// index. Param lists never dedupe.
func (p *Program) AddParams(params []string) int32 {
	p.Pool = append(p.Pool, Constant{Kind: ConstParams, Params: append([]string{}, params...)})
	return int32(len(p.Pool) - 1)
}

// Emit appends an opcode with its operands, tagging every emitted slot
// with the given source line. Returns the address of the opcode slot.
func (p *Program) Emit(line int, op Opcode, operands ...int32) int32 {
	addr := int32(len(p.Code))
	p.Code = append(p.Code, int32(op))
	p.Code = append(p.Code, operands...)
	for i := 0; i < 1+len(operands); i++ {
		p.SourceMap = append(p.SourceMap, int32(line))
	}
	return addr
}

// EmitJump emits a jump instruction with a placeholder target and
// returns the address of the target operand slot for later patching.
func (p *Program) EmitJump(line int, op Opcode) int32 {
	p.Emit(line, op, -1)
	return int32(len(p.Code) - 1)
}

// PatchJump patches a jump operand slot to target the current end of
// the code array.
func (p *Program) PatchJump(operandAddr int32) {
	p.Code[operandAddr] = int32(len(p.Code))
}

// PatchJumpTo patches a jump operand slot to a specific address.
func (p *Program) PatchJumpTo(operandAddr, target int32) {
	p.Code[operandAddr] = target
}

// CurrentAddr returns the address one past the last emitted slot.
func (p *Program) CurrentAddr() int32 {
	return int32(len(p.Code))
}

// CodeLen returns the length of the code array.
func (p *Program) CodeLen() int {
	return len(p.Code)
}

// PoolLen returns the number of constants in the pool.
func (p *Program) PoolLen() int {
	return len(p.Pool)
}

// LineAt returns the source line for a code slot, or 0 when the address
// is out of range.
func (p *Program) LineAt(addr int32) int32 {
	if addr < 0 || int(addr) >= len(p.SourceMap) {
		return 0
	}
	return p.SourceMap[addr]
}
