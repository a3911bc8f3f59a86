package types

// Param is a bound parameter of a rendered statement.
type Param struct {
	// Name is the parameter name without any dialect prefix.
	Name string
	// Placeholder is the text emitted into the SQL for this parameter.
	Placeholder string
	Value       any
	Kind        ScalarKind
	Size        int
}
