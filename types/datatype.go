package types

// DataType is the resolved type tag attached to expressions by the checker.
type DataType int

const (
	Unknown DataType = iota
	Int
	Float
	Bool
	Char
	String
	Void

	// Error marks an expression whose type could not be resolved. It never
	// produces further diagnostics of its own.
	Error
)

var dataTypeNames = map[DataType]string{
	Unknown: "unknown",
	Int:     "int",
	Float:   "float",
	Bool:    "bool",
	Char:    "char",
	String:  "string",
	Void:    "void",
	Error:   "error",
}

func (d DataType) String() string {
	return dataTypeNames[d]
}

// ParseDataType maps a type keyword spelling to its tag.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "bool":
		return Bool, true
	case "char":
		return Char, true
	case "string":
		return String, true
	case "void":
		return Void, true
	}
	return Unknown, false
}

// rank is the position in the promotion lattice bool < char < int < float,
// or -1 for types outside it.
func (d DataType) rank() int {
	switch d {
	case Bool:
		return 0
	case Char:
		return 1
	case Int:
		return 2
	case Float:
		return 3
	}
	return -1
}

// InLattice reports whether d takes part in implicit promotion.
func (d DataType) InLattice() bool {
	return d.rank() >= 0
}

func (d DataType) IsNumeric() bool {
	return d == Int || d == Float
}

// Assignable reports whether a value of type source can be stored in a slot
// declared as target. Narrowing along the lattice is rejected.
func Assignable(target, source DataType) bool {
	if target == source {
		return true
	}
	if !target.InLattice() || !source.InLattice() {
		return false
	}
	return target.rank() >= source.rank()
}

// Promote returns the wider of two lattice types.
func Promote(a, b DataType) DataType {
	if a.rank() >= b.rank() {
		return a
	}
	return b
}
