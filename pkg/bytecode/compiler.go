package bytecode

import (
	"github.com/chazu/blocks/compiler"
)

// ---------------------------------------------------------------------------
// Compiler: single pass from AST to a Program artifact
// ---------------------------------------------------------------------------
//
// The compiler maintains a stack of lexical scopes mirroring block
// nesting. Every variable reference resolves to one of: a local slot in
// the innermost scope, an upvalue (slot, hops) in an enclosing scope,
// or a global looked up by pooled name. Writes inside a block that
// resolve to nothing implicitly declare a new local; this is the only
// way locals come into existence.

// localBinding associates a name with its environment slot.
type localBinding struct {
	name  string
	index int32
}

// scope holds the ordered local bindings of one block.
type scope struct {
	locals []localBinding
}

// Compiler converts a parsed Blocks program to bytecode.
type Compiler struct {
	prog   *Program
	scopes []*scope
}

// Compile compiles a program AST to a bytecode artifact. The compiler
// accepts any well-formed AST; there are no intrinsic compile errors.
func Compile(exprs []compiler.Expr) *Program {
	c := &Compiler{prog: NewProgram()}

	lastLine := 1
	for i, e := range exprs {
		c.compileExpr(e, false)
		lastLine = e.Line()
		if i < len(exprs)-1 {
			c.prog.Emit(exprs[i+1].Line(), OpPop)
		}
	}
	c.prog.Emit(lastLine, OpHalt)

	return c.prog
}

// CompileSource runs the full front end: source text to artifact.
func CompileSource(src string) (*Program, error) {
	exprs, err := compiler.Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(exprs), nil
}

// ---------------------------------------------------------------------------
// Variable resolution
// ---------------------------------------------------------------------------

// siteKind discriminates resolved variable sites.
type siteKind int

const (
	siteLocal siteKind = iota
	siteUpval
	siteGlobal
)

// site is a resolved variable reference.
type site struct {
	kind  siteKind
	index int32 // local/upvalue slot
	hops  int32 // parent links to traverse (upvalue only)
}

func (c *Compiler) innermost() *scope {
	return c.scopes[len(c.scopes)-1]
}

// lookup scans the scope stack for a name. The innermost scope is
// scanned newest binding first; outer scopes from immediately enclosing
// outward, counting hops.
func (c *Compiler) lookup(name string) (site, bool) {
	for depth := len(c.scopes) - 1; depth >= 0; depth-- {
		sc := c.scopes[depth]
		for i := len(sc.locals) - 1; i >= 0; i-- {
			if sc.locals[i].name == name {
				hops := int32(len(c.scopes) - 1 - depth)
				if hops == 0 {
					return site{kind: siteLocal, index: sc.locals[i].index}, true
				}
				return site{kind: siteUpval, index: sc.locals[i].index, hops: hops}, true
			}
		}
	}
	return site{}, false
}

// declareLocal binds a fresh local in the innermost scope.
func (c *Compiler) declareLocal(name string) int32 {
	sc := c.innermost()
	idx := int32(len(sc.locals))
	sc.locals = append(sc.locals, localBinding{name: name, index: idx})
	return idx
}

// resolveLoad resolves a read site.
func (c *Compiler) resolveLoad(name string) site {
	if len(c.scopes) > 0 {
		if s, ok := c.lookup(name); ok {
			return s
		}
	}
	return site{kind: siteGlobal}
}

// resolveStore resolves a write site, implicitly declaring a new local
// when the name is invisible inside a block. Writes at the global scope
// always store to globals.
func (c *Compiler) resolveStore(name string) site {
	if len(c.scopes) == 0 {
		return site{kind: siteGlobal}
	}
	if s, ok := c.lookup(name); ok {
		return s
	}
	return site{kind: siteLocal, index: c.declareLocal(name)}
}

func (c *Compiler) emitLoad(line int, name string, s site) {
	switch s.kind {
	case siteLocal:
		c.prog.Emit(line, OpLoadLocal, s.index)
	case siteUpval:
		c.prog.Emit(line, OpLoadUpval, s.index, s.hops)
	case siteGlobal:
		c.prog.Emit(line, OpLoadGlobal, c.prog.AddStr(name))
	}
}

func (c *Compiler) emitStore(line int, name string, s site) {
	switch s.kind {
	case siteLocal:
		c.prog.Emit(line, OpStoreLocal, s.index)
	case siteUpval:
		c.prog.Emit(line, OpStoreUpval, s.index, s.hops)
	case siteGlobal:
		c.prog.Emit(line, OpStoreGlobal, c.prog.AddStr(name))
	}
}

// ---------------------------------------------------------------------------
// Emission
// ---------------------------------------------------------------------------

// compileExpr compiles one expression, leaving its value on the stack.
// tail marks the expression as the last-executed of the enclosing block
// body; calls emitted in tail position reuse the caller's frame.
func (c *Compiler) compileExpr(e compiler.Expr, tail bool) {
	switch n := e.(type) {
	case *compiler.IntLit:
		c.prog.Emit(n.LineNum, OpPushConst, c.prog.AddInt(n.Value))

	case *compiler.StrLit:
		c.prog.Emit(n.LineNum, OpPushConst, c.prog.AddStr(n.Value))

	case *compiler.Ident:
		c.emitLoad(n.LineNum, n.Name, c.resolveLoad(n.Name))

	case *compiler.Assign:
		c.compileAssign(n)

	case *compiler.BinaryExpr:
		c.compileExpr(n.Left, false)
		c.compileExpr(n.Right, false)
		c.prog.Emit(n.LineNum, OpBinaryOp, c.prog.AddStr(n.Op))

	case *compiler.IfExpr:
		c.compileIf(n, tail)

	case *compiler.BlockExpr:
		c.compileBlock(n)

	case *compiler.CallExpr:
		c.compileExpr(n.Callee, false)
		for _, arg := range n.Args {
			c.compileExpr(arg, false)
		}
		op := OpCall
		if tail {
			op = OpTailCall
		}
		c.prog.Emit(n.LineNum, op, int32(len(n.Args)))
	}
}

// compileAssign compiles `name = expr`. When the right-hand side is a
// block literal, the name is resolved (and possibly declared) before
// the body compiles, so the body can reference the name recursively.
// For every other shape the value compiles first, preserving
// `x = x + 1` read-outer-then-bind semantics. The store is a peek
// write: the assigned value remains on the stack as the result.
func (c *Compiler) compileAssign(n *compiler.Assign) {
	if _, isBlock := n.Value.(*compiler.BlockExpr); isBlock {
		s := c.resolveStore(n.Name)
		c.compileExpr(n.Value, false)
		c.emitStore(n.LineNum, n.Name, s)
		return
	}
	c.compileExpr(n.Value, false)
	c.emitStore(n.LineNum, n.Name, c.resolveStore(n.Name))
}

// compileIf compiles a conditional. Each branch is followed by a
// call-if-closure so bracketed branch bodies `[ ... ]`, which evaluate
// to closures, are invoked with zero arguments. Natives in branch
// position are invoked the same way; other branch values pass through
// unchanged.
func (c *Compiler) compileIf(n *compiler.IfExpr, tail bool) {
	callOp := OpCallIfClo
	if tail {
		callOp = OpTailCallIfClo
	}

	c.compileExpr(n.Cond, false)
	elseJump := c.prog.EmitJump(n.LineNum, OpJumpIfF)

	c.compileExpr(n.Then, tail)
	c.prog.Emit(n.Then.Line(), callOp)
	endJump := c.prog.EmitJump(n.LineNum, OpJump)

	c.prog.PatchJump(elseJump)
	c.compileExpr(n.Else, tail)
	c.prog.Emit(n.Else.Line(), callOp)

	c.prog.PatchJump(endJump)
}

// compileBlock compiles a block literal. Execution first branches over
// the body; the body is reachable only via a call. Parameters occupy
// the first local slots in declaration order.
func (c *Compiler) compileBlock(n *compiler.BlockExpr) {
	overJump := c.prog.EmitJump(n.LineNum, OpJump)
	entry := c.prog.CurrentAddr()

	c.scopes = append(c.scopes, &scope{})
	for _, p := range n.Params {
		c.declareLocal(p)
	}

	lastLine := n.LineNum
	if len(n.Body) == 0 {
		c.prog.Emit(n.LineNum, OpPushConst, c.prog.AddInt(0))
	}
	for i, e := range n.Body {
		c.compileExpr(e, i == len(n.Body)-1)
		lastLine = e.Line()
		if i < len(n.Body)-1 {
			c.prog.Emit(n.Body[i+1].Line(), OpPop)
		}
	}
	c.prog.Emit(lastLine, OpReturn)

	localCount := int32(len(c.innermost().locals))
	c.scopes = c.scopes[:len(c.scopes)-1]

	c.prog.PatchJump(overJump)
	c.prog.Emit(n.LineNum, OpMakeBlock, c.prog.AddParams(n.Params), entry, localCount)
}
