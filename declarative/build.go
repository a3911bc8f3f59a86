package declarative

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zoobzio/dynq"
)

// uuidPrefix marks a string value as a UUID literal.
const uuidPrefix = "uuid:"

// Build compiles doc into a query of a fresh graph. Conditions that name a
// param take their value from params.
func Build(doc *Document, params map[string]any, opts ...dynq.Option) (*dynq.Query, error) {
	b := &builder{graph: dynq.NewGraph(opts...), params: params}
	return b.query(doc)
}

type builder struct {
	graph  *dynq.Graph
	params map[string]any
}

// scope resolves "alias.column" references within one document.
type scope struct {
	root    *dynq.Query
	aliases map[string]*dynq.Query
}

func (s *scope) col(ref string) (dynq.Expr, error) {
	if ref == "" {
		return dynq.Expr{}, fmt.Errorf("declarative: field is required")
	}
	alias, name, ok := strings.Cut(ref, ".")
	if !ok {
		return s.root.Col(ref), nil
	}
	q, found := s.aliases[alias]
	if !found {
		return dynq.Expr{}, fmt.Errorf("declarative: unknown alias %q in %q", alias, ref)
	}
	if name == "*" {
		return q.Star(), nil
	}
	return q.Col(name), nil
}

func (b *builder) query(doc *Document) (*dynq.Query, error) {
	if doc == nil {
		return nil, fmt.Errorf("declarative: nil document")
	}
	if doc.Table == "" {
		return nil, fmt.Errorf("declarative: table is required")
	}

	q := b.graph.Query(doc.Table, doc.Alias)
	if doc.Schema != "" {
		q.InSchema(doc.Schema)
	}
	if doc.Distinct {
		q.Distinct()
	}
	s := &scope{root: q, aliases: map[string]*dynq.Query{}}
	if doc.Alias != "" {
		s.aliases[doc.Alias] = q
	}

	for i := range doc.Joins {
		if err := b.join(q, s, &doc.Joins[i]); err != nil {
			return nil, err
		}
	}

	for _, f := range doc.Fields {
		x, err := b.field(s, f)
		if err != nil {
			return nil, err
		}
		q.Select(x)
	}

	if doc.Where != nil {
		item, err := b.condition(s, doc.Where)
		if err != nil {
			return nil, err
		}
		q.Where(item)
	}

	for _, ref := range doc.GroupBy {
		x, err := s.col(ref)
		if err != nil {
			return nil, err
		}
		q.GroupBy(x)
	}

	for i := range doc.Having {
		item, err := b.condition(s, &doc.Having[i])
		if err != nil {
			return nil, err
		}
		q.Having(item)
	}

	for _, o := range doc.OrderBy {
		x, err := s.col(o.Field)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(o.Direction) {
		case "", "ASC":
			q.OrderBy(x.Asc())
		case "DESC":
			q.OrderBy(x.Desc())
		default:
			return nil, fmt.Errorf("declarative: invalid direction %q", o.Direction)
		}
	}

	if doc.Top != 0 {
		q.Top(doc.Top)
	}
	if doc.Skip != nil {
		q.Skip(*doc.Skip)
	}
	if doc.Take != nil {
		q.Take(*doc.Take)
	}
	if doc.Page != nil {
		q.Page(doc.Page.Number, doc.Page.Size)
	}

	if err := q.Err(); err != nil {
		return nil, fmt.Errorf("declarative: %s: %w", doc.Table, err)
	}
	return q, nil
}

func (b *builder) join(q *dynq.Query, s *scope, j *JoinSchema) error {
	if j.Table == "" || j.Alias == "" {
		return fmt.Errorf("declarative: join requires table and alias")
	}
	if _, dup := s.aliases[j.Alias]; dup {
		return fmt.Errorf("declarative: duplicate alias %q", j.Alias)
	}
	target := b.graph.Query(j.Table, j.Alias)
	s.aliases[j.Alias] = target

	on := make([]any, 0, len(j.On))
	for i := range j.On {
		item, err := b.condition(s, &j.On[i])
		if err != nil {
			return err
		}
		on = append(on, item)
	}

	switch strings.ToLower(j.Type) {
	case "", "inner":
		q.InnerJoin(target, on...)
	case "left":
		q.LeftJoin(target, on...)
	case "right":
		q.RightJoin(target, on...)
	case "full":
		q.FullJoin(target, on...)
	case "cross":
		if len(on) > 0 {
			return fmt.Errorf("declarative: cross join %q takes no conditions", j.Alias)
		}
		q.CrossJoin(target)
	default:
		return fmt.Errorf("declarative: invalid join type %q", j.Type)
	}
	return nil
}

func (b *builder) field(s *scope, f FieldSchema) (dynq.Expr, error) {
	x, err := s.col(f.Field)
	if err != nil {
		return x, err
	}
	for _, fn := range f.Functions {
		switch strings.ToLower(fn) {
		case "upper":
			x = x.Upper()
		case "lower":
			x = x.Lower()
		case "trim":
			x = x.Trim()
		case "ltrim":
			x = x.LTrim()
		case "rtrim":
			x = x.RTrim()
		case "length":
			x = x.Length()
		case "date":
			x = x.Date()
		default:
			return x, fmt.Errorf("declarative: unknown function %q", fn)
		}
	}
	switch strings.ToLower(f.Aggregate) {
	case "":
	case "sum":
		x = x.Sum()
	case "avg":
		x = x.Avg()
	case "min":
		x = x.Min()
	case "max":
		x = x.Max()
	case "count":
		x = x.Count()
	case "count_distinct":
		x = x.Distinct().Count()
	default:
		return x, fmt.Errorf("declarative: unknown aggregate %q", f.Aggregate)
	}
	if f.Alias != "" {
		x = x.As(f.Alias)
	}
	return x, x.Err()
}

// condition returns a dynq.Predicate or dynq.Group.
func (b *builder) condition(s *scope, c *ConditionSchema) (any, error) {
	if len(c.Conditions) > 0 {
		items := make([]any, 0, len(c.Conditions))
		for i := range c.Conditions {
			item, err := b.condition(s, &c.Conditions[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		switch strings.ToUpper(c.Logic) {
		case "", "AND":
			return dynq.And(items...), nil
		case "OR":
			return dynq.Or(items...), nil
		default:
			return nil, fmt.Errorf("declarative: invalid logic %q", c.Logic)
		}
	}

	left, err := s.col(c.Field)
	if err != nil {
		return nil, err
	}
	values, err := b.operands(s, c)
	if err != nil {
		return nil, err
	}
	p := dynq.ManualWhere(left, c.Operator, values...)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("declarative: %s %s: %w", c.Field, c.Operator, err)
	}
	return p, nil
}

// operands collects the right-hand side of a comparison.
func (b *builder) operands(s *scope, c *ConditionSchema) ([]any, error) {
	set := 0
	for _, ok := range []bool{c.Value != nil, len(c.Values) > 0, c.Param != "", c.RightField != "", c.Subquery != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("declarative: %s has more than one right-hand side", c.Field)
	}

	switch {
	case c.Value != nil:
		v, err := literal(c.Value)
		return []any{v}, err
	case len(c.Values) > 0:
		out := make([]any, len(c.Values))
		for i, v := range c.Values {
			lit, err := literal(v)
			if err != nil {
				return nil, err
			}
			out[i] = lit
		}
		return out, nil
	case c.Param != "":
		v, ok := b.params[c.Param]
		if !ok {
			return nil, fmt.Errorf("declarative: missing param %q", c.Param)
		}
		return []any{v}, nil
	case c.RightField != "":
		x, err := s.col(c.RightField)
		return []any{x}, err
	case c.Subquery != nil:
		sub, err := b.query(c.Subquery)
		return []any{sub}, err
	default:
		return nil, nil
	}
}

// literal converts a decoded value to a dynq literal. "uuid:" strings
// become UUIDs.
func literal(v any) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, uuidPrefix) {
		return v, nil
	}
	id, err := uuid.Parse(strings.TrimPrefix(s, uuidPrefix))
	if err != nil {
		return nil, fmt.Errorf("declarative: %w", err)
	}
	return id, nil
}
