package bytecode

import (
	"fmt"
	"strings"
)

// ValueType represents the type of a Blocks runtime value.
type ValueType int

const (
	TypeNil ValueType = iota
	TypeInt
	TypeStr
	TypeClosure
	TypeNative
)

// String returns a human-readable name for the value type.
func (t ValueType) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeInt:
		return "int"
	case TypeStr:
		return "string"
	case TypeClosure:
		return "closure"
	case TypeNative:
		return "native"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Value is the Go representation of a Blocks runtime value.
type Value struct {
	Type       ValueType
	IntVal     int64
	StrVal     string
	ClosureVal *Closure
	NativeVal  *Native
}

// Closure is a user-defined callable created by MAKE_BLOCK.
type Closure struct {
	Entry      int32    // Entry address in the code array
	LocalCount int32    // Number of local slots to pre-allocate on entry
	Params     []string // Parameter names, retained for diagnostics only
	Env        *Env     // Runtime environment active at creation
}

// Native is a host-provided callable installed in the global
// environment.
type Native struct {
	Name string
	Fn   func(args []Value) Value
}

// Env is a runtime environment: a fixed-size vector of value slots and
// a link to the parent environment. Environments form a DAG via closure
// capture; lifetime is managed by the Go runtime.
type Env struct {
	Values []Value
	Parent *Env
}

// NewEnv allocates an environment with the given slot count.
func NewEnv(slots int, parent *Env) *Env {
	return &Env{Values: make([]Value, slots), Parent: parent}
}

// NilValue returns the nil value.
func NilValue() Value {
	return Value{Type: TypeNil}
}

// IntValue creates an integer value.
func IntValue(n int64) Value {
	return Value{Type: TypeInt, IntVal: n}
}

// StrValue creates a string value.
func StrValue(s string) Value {
	return Value{Type: TypeStr, StrVal: s}
}

// ClosureValue creates a closure value.
func ClosureValue(c *Closure) Value {
	return Value{Type: TypeClosure, ClosureVal: c}
}

// NativeValue creates a native-callable value.
func NativeValue(n *Native) Value {
	return Value{Type: TypeNative, NativeVal: n}
}

// Truthy reports whether the value counts as true. Nil, Int 0 and the
// empty string are false; all other values are true.
func (v Value) Truthy() bool {
	switch v.Type {
	case TypeNil:
		return false
	case TypeInt:
		return v.IntVal != 0
	case TypeStr:
		return v.StrVal != ""
	default:
		return true
	}
}

// IsCallable reports whether the value can be the target of a call.
func (v Value) IsCallable() bool {
	return v.Type == TypeClosure || v.Type == TypeNative
}

// Equals compares two values: integers numerically, strings by content,
// everything else by reference identity. Mismatched types are unequal.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeNil:
		return true
	case TypeInt:
		return v.IntVal == other.IntVal
	case TypeStr:
		return v.StrVal == other.StrVal
	case TypeClosure:
		return v.ClosureVal == other.ClosureVal
	case TypeNative:
		return v.NativeVal == other.NativeVal
	}
	return false
}

// String renders the value the way print and to_s do: integers in
// decimal, strings as their content, closures as <closure params=...>,
// natives as <native>, and nil as the literal string "null".
func (v Value) String() string {
	switch v.Type {
	case TypeNil:
		return "null"
	case TypeInt:
		return fmt.Sprintf("%d", v.IntVal)
	case TypeStr:
		return v.StrVal
	case TypeClosure:
		return fmt.Sprintf("<closure params=%s>", strings.Join(v.ClosureVal.Params, ","))
	case TypeNative:
		return "<native>"
	default:
		return fmt.Sprintf("<unknown %d>", int(v.Type))
	}
}
