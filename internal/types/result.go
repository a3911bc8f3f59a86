package types

import "database/sql"

// QueryResult contains the rendered SQL and its parameters in text order.
type QueryResult struct {
	SQL    string
	Params []Param
	// Named is true when placeholders refer to parameters by name.
	Named bool
}

// Args returns the parameter values in the form database/sql expects:
// sql.NamedArg values for named dialects, plain values otherwise.
func (r *QueryResult) Args() []any {
	args := make([]any, len(r.Params))
	for i, p := range r.Params {
		if r.Named {
			args[i] = sql.Named(p.Name, p.Value)
		} else {
			args[i] = p.Value
		}
	}
	return args
}

// Names lists the parameter names in text order.
func (r *QueryResult) Names() []string {
	names := make([]string, len(r.Params))
	for i, p := range r.Params {
		names[i] = p.Name
	}
	return names
}

// Param returns the parameter with the given name.
func (r *QueryResult) Param(name string) (Param, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
