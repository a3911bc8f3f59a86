package render

import (
	"strconv"
	"strings"
)

// ParamName derives a parameter name from a column name and the running
// parameter index: "Last Name" and 3 give "LastName3". When the cleaned name
// ends in a digit an underscore separates the index, so "A1" and 1 give
// "A1_1". Columns that sanitize to nothing use "p".
func ParamName(column string, index int) string {
	var b strings.Builder
	for _, r := range column {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteByte('p')
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteByte('p')
	}
	if s := b.String(); s[len(s)-1] >= '0' && s[len(s)-1] <= '9' {
		b.WriteByte('_')
	}
	b.WriteString(strconv.Itoa(index))
	return b.String()
}

// ParamNames hands out parameter names that are unique within one
// statement.
type ParamNames map[string]bool

// Next returns ParamName(column, index), suffixed with _2, _3 and so on
// while the name is taken.
func (n ParamNames) Next(column string, index int) string {
	base := ParamName(column, index)
	name := base
	for i := 2; n[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	n[name] = true
	return name
}
