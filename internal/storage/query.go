package storage

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultFirst = 100
	MaxFirst     = 1000
)

// FieldKind tells how a field's values compare.
type FieldKind int

const (
	KindString FieldKind = iota
	// KindHex values are hex strings compared case-insensitively.
	KindHex
	KindInt
)

// Field maps a queryable record field onto its storage column.
type Field struct {
	Name   string
	Column string
	Kind   FieldKind
}

// Entity describes a queryable record collection.
type Entity struct {
	Name   string
	Table  string
	Fields map[string]Field
}

// Field returns the named field.
func (e Entity) Field(name string) (Field, bool) {
	f, ok := e.Fields[name]
	return f, ok
}

func fields(list ...Field) map[string]Field {
	out := make(map[string]Field, len(list))
	for _, f := range list {
		out[f.Name] = f
	}
	return out
}

var EmployeeEntity = Entity{
	Name:  "employee",
	Table: "employees",
	Fields: fields(
		Field{Name: "id", Column: "id", Kind: KindHex},
		Field{Name: "name", Column: "name", Kind: KindString},
		Field{Name: "age", Column: "age", Kind: KindInt},
		Field{Name: "contactAddress", Column: "contact_address", Kind: KindString},
		Field{Name: "country", Column: "country", Kind: KindString},
		Field{Name: "addr", Column: "addr", Kind: KindHex},
		Field{Name: "employer", Column: "employer", Kind: KindHex},
		Field{Name: "status", Column: "status", Kind: KindString},
		Field{Name: "updatedAt", Column: "updated_at", Kind: KindInt},
	),
}

var StreamEntity = Entity{
	Name:  "stream",
	Table: "streams",
	Fields: fields(
		Field{Name: "id", Column: "id", Kind: KindHex},
		Field{Name: "sender", Column: "sender", Kind: KindHex},
		Field{Name: "receiver", Column: "receiver", Kind: KindHex},
		Field{Name: "to", Column: "to_employee", Kind: KindHex},
		Field{Name: "token", Column: "token", Kind: KindHex},
		Field{Name: "status", Column: "status", Kind: KindString},
		Field{Name: "flowRate", Column: "flow_rate", Kind: KindInt},
		Field{Name: "createdAt", Column: "created_at", Kind: KindInt},
		Field{Name: "updatedAt", Column: "updated_at", Kind: KindInt},
		Field{Name: "txHash", Column: "tx_hash", Kind: KindHex},
	),
}

// Op is a comparison operator of a leaf predicate.
type Op string

const (
	OpEq          Op = "eq"
	OpNot         Op = "not"
	OpContains    Op = "contains"
	OpNotContains Op = "not_contains"
	OpGt          Op = "gt"
	OpGte         Op = "gte"
	OpLt          Op = "lt"
	OpLte         Op = "lte"
	OpIn          Op = "in"
	OpNotIn       Op = "not_in"
)

// suffixes are matched longest first so "_not_contains" wins over "_contains".
var opSuffixes = []struct {
	suffix string
	op     Op
}{
	{"_not_contains", OpNotContains},
	{"_contains", OpContains},
	{"_not_in", OpNotIn},
	{"_not", OpNot},
	{"_gte", OpGte},
	{"_lte", OpLte},
	{"_gt", OpGt},
	{"_lt", OpLt},
	{"_in", OpIn},
}

// Predicate is a node of a filter tree. A leaf sets Field, Op and Value
// (Values for OpIn/OpNotIn); a group sets And or Or.
type Predicate struct {
	Field  string
	Op     Op
	Value  string
	Values []string
	And    []Predicate
	Or     []Predicate
}

// IsLeaf reports whether p compares a field.
func (p Predicate) IsLeaf() bool {
	return p.Field != ""
}

// Query selects, orders and pages records of one entity.
type Query struct {
	Where          *Predicate
	OrderBy        string
	OrderDirection string
	Skip           int
	First          int
}

// Desc reports whether the query orders descending.
func (q Query) Desc() bool {
	return q.OrderDirection == "desc"
}

// Normalize validates q against the entity and fills in defaults.
func (q Query) Normalize(entity Entity) (Query, error) {
	if q.OrderBy == "" {
		q.OrderBy = "id"
	}
	if _, ok := entity.Field(q.OrderBy); !ok {
		return Query{}, fmt.Errorf("unknown %s orderBy field: %s", entity.Name, q.OrderBy)
	}

	switch strings.ToLower(q.OrderDirection) {
	case "", "asc":
		q.OrderDirection = "asc"
	case "desc":
		q.OrderDirection = "desc"
	default:
		return Query{}, fmt.Errorf("invalid orderDirection: %s", q.OrderDirection)
	}

	if q.Skip < 0 {
		return Query{}, fmt.Errorf("skip must be >= 0")
	}
	if q.First < 0 {
		return Query{}, fmt.Errorf("first must be >= 0")
	}
	if q.First == 0 {
		q.First = DefaultFirst
	}
	if q.First > MaxFirst {
		return Query{}, fmt.Errorf("first must be <= %d", MaxFirst)
	}

	if q.Where != nil {
		if err := validatePredicate(entity, *q.Where); err != nil {
			return Query{}, err
		}
	}
	return q, nil
}

func validatePredicate(entity Entity, p Predicate) error {
	if !p.IsLeaf() {
		for _, child := range p.And {
			if err := validatePredicate(entity, child); err != nil {
				return err
			}
		}
		for _, child := range p.Or {
			if err := validatePredicate(entity, child); err != nil {
				return err
			}
		}
		return nil
	}

	field, ok := entity.Field(p.Field)
	if !ok {
		return fmt.Errorf("unknown %s field: %s", entity.Name, p.Field)
	}
	if field.Kind == KindInt {
		if p.Op == OpContains || p.Op == OpNotContains {
			return fmt.Errorf("%s does not support %s", p.Field, p.Op)
		}
		values := p.Values
		if p.Op != OpIn && p.Op != OpNotIn {
			values = []string{p.Value}
		}
		for _, v := range values {
			if _, ok := new(big.Int).SetString(v, 10); !ok {
				return fmt.Errorf("%s expects an integer, got %q", p.Field, v)
			}
		}
	}
	return nil
}

// ParseWhere builds a predicate tree from a subgraph-style filter object,
// e.g. {"employer": "0x..", "status": "ACTIVE"} or {"or": [{"sender": "0x.."}, {"receiver": "0x.."}]}.
// Keys of one object are combined with AND.
func ParseWhere(entity Entity, where map[string]interface{}) (*Predicate, error) {
	if len(where) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	group := Predicate{}
	for _, key := range keys {
		raw := where[key]
		switch key {
		case "and", "or":
			children, err := parseGroup(entity, key, raw)
			if err != nil {
				return nil, err
			}
			if key == "and" {
				group.And = append(group.And, children...)
			} else {
				group.And = append(group.And, Predicate{Or: children})
			}
		default:
			leaf, err := parseLeaf(entity, key, raw)
			if err != nil {
				return nil, err
			}
			group.And = append(group.And, leaf)
		}
	}

	if len(group.And) == 1 {
		return &group.And[0], nil
	}
	return &group, nil
}

func parseGroup(entity Entity, key string, raw interface{}) ([]Predicate, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s expects a list of filters", key)
	}
	children := make([]Predicate, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s expects a list of filters", key)
		}
		child, err := ParseWhere(entity, obj)
		if err != nil {
			return nil, err
		}
		if child != nil {
			children = append(children, *child)
		}
	}
	return children, nil
}

func parseLeaf(entity Entity, key string, raw interface{}) (Predicate, error) {
	name, op := splitFieldOp(entity, key)
	field, ok := entity.Field(name)
	if !ok {
		return Predicate{}, fmt.Errorf("unknown %s field: %s", entity.Name, key)
	}

	leaf := Predicate{Field: name, Op: op}
	if op == OpIn || op == OpNotIn {
		items, ok := raw.([]interface{})
		if !ok {
			return Predicate{}, fmt.Errorf("%s expects a list", key)
		}
		for _, item := range items {
			v, err := scalarString(key, item)
			if err != nil {
				return Predicate{}, err
			}
			leaf.Values = append(leaf.Values, normalizeValue(field, v))
		}
		return leaf, nil
	}

	v, err := scalarString(key, raw)
	if err != nil {
		return Predicate{}, err
	}
	leaf.Value = normalizeValue(field, v)
	return leaf, nil
}

func splitFieldOp(entity Entity, key string) (string, Op) {
	if _, ok := entity.Field(key); ok {
		return key, OpEq
	}
	for _, s := range opSuffixes {
		if strings.HasSuffix(key, s.suffix) {
			return strings.TrimSuffix(key, s.suffix), s.op
		}
	}
	return key, OpEq
}

func scalarString(key string, raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%s has unsupported value type %T", key, raw)
	}
}

func normalizeValue(field Field, v string) string {
	if field.Kind == KindHex {
		return strings.ToLower(v)
	}
	return v
}
