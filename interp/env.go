package interp

import "github.com/pontaoski/gox/types"

type binding struct {
	typ types.DataType
	val Value
}

type frame struct {
	names map[string]*binding
	call  bool
}

// env is the frame stack. Frame 0 holds the globals. A call frame hides
// everything between it and the globals, so callees cannot see their
// caller's locals.
type env struct {
	frames []*frame
}

func newEnv() *env {
	e := &env{}
	e.push(false)
	return e
}

func (e *env) push(call bool) {
	e.frames = append(e.frames, &frame{names: map[string]*binding{}, call: call})
}

func (e *env) pop() {
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *env) top() *frame {
	return e.frames[len(e.frames)-1]
}

func (e *env) declare(name string, typ types.DataType, val Value) {
	e.top().names[name] = &binding{typ: typ, val: val}
}

func (e *env) lookup(name string) *binding {
	for i := len(e.frames) - 1; i > 0; i-- {
		if b, ok := e.frames[i].names[name]; ok {
			return b
		}
		if e.frames[i].call {
			break
		}
	}
	return e.frames[0].names[name]
}
