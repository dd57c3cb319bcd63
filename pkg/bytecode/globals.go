package bytecode

import "strings"

// PrintSink receives the output of the print native, one call per
// print invocation, without a trailing newline.
type PrintSink func(s string)

// Globals is the process-wide mapping from identifier to value. Lookup
// walks a parent chain, so a host can layer its own bindings beneath a
// run's mutable globals. STORE_GLOBAL updates a name in place wherever
// it lives on the chain and otherwise inserts into the layer the VM
// runs against.
type Globals struct {
	vars   map[string]Value
	parent *Globals
}

// NewGlobals creates an empty root global environment.
func NewGlobals() *Globals {
	return &Globals{vars: make(map[string]Value)}
}

// NewChildGlobals creates a global layer whose lookups fall through to
// parent.
func NewChildGlobals(parent *Globals) *Globals {
	return &Globals{vars: make(map[string]Value), parent: parent}
}

// Get looks a name up along the chain.
func (g *Globals) Get(name string) (Value, bool) {
	for e := g; e != nil; e = e.parent {
		if v, ok := e.vars[name]; ok {
			return v, true
		}
	}
	return NilValue(), false
}

// Set updates the name in place if it already exists anywhere on the
// chain; otherwise it inserts into g itself, the layer Set is called on.
func (g *Globals) Set(name string, v Value) {
	for e := g; e != nil; e = e.parent {
		if _, ok := e.vars[name]; ok {
			e.vars[name] = v
			return
		}
	}
	g.vars[name] = v
}

// Names returns the identifiers bound directly in this layer.
func (g *Globals) Names() []string {
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	return names
}

// DefaultGlobals builds the default global environment: print routed
// to the given sink, to_s and to_n.
func DefaultGlobals(sink PrintSink) *Globals {
	g := NewGlobals()
	g.Set("print", NativeValue(&Native{
		Name: "print",
		Fn: func(args []Value) Value {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.String()
			}
			if sink != nil {
				sink(strings.Join(parts, " "))
			}
			if len(args) == 0 {
				return NilValue()
			}
			return args[len(args)-1]
		},
	}))
	g.Set("to_s", NativeValue(&Native{
		Name: "to_s",
		Fn: func(args []Value) Value {
			if len(args) == 0 {
				return StrValue(NilValue().String())
			}
			return StrValue(args[0].String())
		},
	}))
	g.Set("to_n", NativeValue(&Native{
		Name: "to_n",
		Fn: func(args []Value) Value {
			if len(args) == 0 {
				return IntValue(0)
			}
			return IntValue(parseLeadingInt(args[0].String()))
		},
	}))
	return g
}

// parseLeadingInt parses the longest leading integer of s, with an
// optional minus sign. Anything else yields 0.
func parseLeadingInt(s string) int64 {
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	var n int64
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int64(s[i]-'0')
		digits++
		i++
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
