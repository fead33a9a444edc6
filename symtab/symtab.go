// Package symtab implements the scope tree shared by the checker and the
// interpreter. Scopes live in an arena and refer to their parent by handle,
// so the tree has a single owner and no reference cycles.
package symtab

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/gox/ast"
	"github.com/pontaoski/gox/errors"
	"github.com/pontaoski/gox/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/gox", "symtab")

type Handle int

// Global is the handle of the program scope created by New.
const Global Handle = 0

const noParent Handle = -1

type Kind int

const (
	Var Kind = iota
	Const
	Param
	Func
	Extern
)

func (k Kind) String() string {
	switch k {
	case Var:
		return "var"
	case Const:
		return "const"
	case Param:
		return "param"
	case Func:
		return "func"
	case Extern:
		return "extern"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbol is the declaration a name resolves to. For functions Type is the
// return type.
type Symbol struct {
	Name   string
	Kind   Kind
	Type   types.DataType
	Params []ast.Param
	Line   int
	Node   ast.Node
}

func (s *Symbol) IsCallable() bool {
	return s.Kind == Func || s.Kind == Extern
}

type scope struct {
	name     string
	entries  map[string]*Symbol
	order    []string
	parent   Handle
	children []Handle
}

type Table struct {
	scopes []scope
}

// New creates a table holding only the global scope.
func New() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, scope{
		name:    "global",
		entries: map[string]*Symbol{},
		parent:  noParent,
	})
	return t
}

// Open creates a child of parent. Handles are never reused, so each lexical
// construct gets its own scope even when two constructs share a name.
func (t *Table) Open(parent Handle, name string) Handle {
	h := Handle(len(t.scopes))
	t.scopes = append(t.scopes, scope{
		name:    name,
		entries: map[string]*Symbol{},
		parent:  parent,
	})
	t.scopes[parent].children = append(t.scopes[parent].children, h)
	plog.Tracef("open scope %d %q under %d", h, name, parent)
	return h
}

// Add declares sym in scope h. A name already present in h is rejected with
// TypeConflict when the declared types differ and AlreadyDeclared otherwise.
func (t *Table) Add(h Handle, sym *Symbol) error {
	s := &t.scopes[h]
	if existing, ok := s.entries[sym.Name]; ok {
		if existing.Type != sym.Type {
			return errors.TypeConflict{Name: sym.Name, Existing: existing.Type, New: sym.Type}
		}
		return errors.AlreadyDeclared{Name: sym.Name, Scope: s.name, Line: existing.Line}
	}
	s.entries[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return nil
}

// Lookup resolves name starting at h and walking outward through parents.
func (t *Table) Lookup(h Handle, name string) (*Symbol, error) {
	for cur := h; cur != noParent; cur = t.scopes[cur].parent {
		if sym, ok := t.scopes[cur].entries[name]; ok {
			return sym, nil
		}
	}
	return nil, errors.NotFound{Name: name}
}

// LookupLocal resolves name in h only.
func (t *Table) LookupLocal(h Handle, name string) (*Symbol, bool) {
	sym, ok := t.scopes[h].entries[name]
	return sym, ok
}

func (t *Table) Parent(h Handle) (Handle, bool) {
	p := t.scopes[h].parent
	return p, p != noParent
}

func (t *Table) Name(h Handle) string {
	return t.scopes[h].name
}

func (t *Table) Children(h Handle) []Handle {
	return append([]Handle(nil), t.scopes[h].children...)
}

// Symbols lists the declarations of h in declaration order.
func (t *Table) Symbols(h Handle) []*Symbol {
	s := t.scopes[h]
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name])
	}
	return out
}

func (t *Table) Len() int {
	return len(t.scopes)
}

// Dump writes the scope tree rooted at h as indented tables.
func (t *Table) Dump(w io.Writer, h Handle) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	t.dump(tw, h, 0)
	return tw.Flush()
}

func (t *Table) dump(w io.Writer, h Handle, depth int) {
	indent := strings.Repeat("    ", depth)
	fmt.Fprintf(w, "%sscope %s\n", indent, t.scopes[h].name)
	for _, sym := range t.Symbols(h) {
		detail := sym.Type.String()
		if sym.IsCallable() {
			var params []string
			for _, p := range sym.Params {
				params = append(params, p.Name+" "+p.Type.String())
			}
			detail = fmt.Sprintf("(%s) %s", strings.Join(params, ", "), sym.Type)
		}
		fmt.Fprintf(w, "%s  %s\t%s\t%s\n", indent, sym.Name, sym.Kind, detail)
	}
	for _, child := range t.scopes[h].children {
		t.dump(w, child, depth+1)
	}
}
