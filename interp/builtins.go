package interp

import (
	"fmt"
	"io"
)

// Host is what a host function sees of the running interpreter.
type Host struct {
	Mem *Memory
	Out io.Writer
}

// HostFunc implements an `import func` declaration. Arguments arrive already
// converted to the declared parameter types; the result is converted to the
// declared return type.
type HostFunc func(h *Host, args []Value) (Value, error)

// Builtins returns the host functions every interpreter starts with. A
// program still has to declare them with `import func` before calling them.
func Builtins() map[string]HostFunc {
	ret := make(map[string]HostFunc)

	funcs := []func() (string, HostFunc){
		addPutc,
		addPuti,
		addPeek,
		addPoke,
		addMemsize,
		addBrk,
	}
	for _, fn := range funcs {
		k, v := fn()
		ret[k] = v
	}

	return ret
}

// ArityMismatch is returned by a builtin declared with the wrong number of
// parameters.
type ArityMismatch struct {
	Want, Got int
}

func (e ArityMismatch) Error() string {
	return fmt.Sprintf("host function takes %d arguments, declared with %d", e.Want, e.Got)
}

func arity(args []Value, n int) error {
	if len(args) != n {
		return ArityMismatch{Want: n, Got: len(args)}
	}
	return nil
}

// putc(c char) int
func addPutc() (string, HostFunc) {
	return "putc", func(h *Host, args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return Void, err
		}
		n, err := h.Out.Write([]byte{args[0].Char()})
		return IntValue(int32(n)), err
	}
}

// puti(n int) int
func addPuti() (string, HostFunc) {
	return "puti", func(h *Host, args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return Void, err
		}
		n, err := fmt.Fprint(h.Out, args[0].Int())
		return IntValue(int32(n)), err
	}
}

// peek(addr int) int reads a single byte.
func addPeek() (string, HostFunc) {
	return "peek", func(h *Host, args []Value) (Value, error) {
		if err := arity(args, 1); err != nil {
			return Void, err
		}
		b, err := h.Mem.Load8(args[0].Int())
		return IntValue(int32(b)), err
	}
}

// poke(addr int, b int) int writes the low byte of b and returns it.
func addPoke() (string, HostFunc) {
	return "poke", func(h *Host, args []Value) (Value, error) {
		if err := arity(args, 2); err != nil {
			return Void, err
		}
		b := byte(args[1].Int())
		return IntValue(int32(b)), h.Mem.Store8(args[0].Int(), b)
	}
}

// memsize() int
func addMemsize() (string, HostFunc) {
	return "memsize", func(h *Host, args []Value) (Value, error) {
		if err := arity(args, 0); err != nil {
			return Void, err
		}
		return IntValue(MemorySize), nil
	}
}

// brk() int returns the current allocation break.
func addBrk() (string, HostFunc) {
	return "brk", func(h *Host, args []Value) (Value, error) {
		if err := arity(args, 0); err != nil {
			return Void, err
		}
		return IntValue(h.Mem.Break()), nil
	}
}
