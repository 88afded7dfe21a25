package postgres

import (
	"fmt"
	"strings"

	"superPayroll/internal/storage"
)

type sqlBuilder struct {
	entity storage.Entity
	args   []interface{}
}

func (b *sqlBuilder) bind(value interface{}) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// compileSelect renders a normalized query into parameterized SQL.
// Ordering always ends with id so paging is deterministic.
func compileSelect(entity storage.Entity, columns string, q storage.Query) (string, []interface{}, error) {
	b := &sqlBuilder{entity: entity}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM ")
	sb.WriteString(entity.Table)

	if q.Where != nil {
		where, err := b.predicate(*q.Where)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	orderField, ok := entity.Field(q.OrderBy)
	if !ok {
		return "", nil, fmt.Errorf("unknown %s orderBy field: %s", entity.Name, q.OrderBy)
	}
	dir := "ASC"
	if q.Desc() {
		dir = "DESC"
	}
	if orderField.Column == "id" {
		fmt.Fprintf(&sb, " ORDER BY id %s", dir)
	} else {
		fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", orderField.Column, dir, dir)
	}

	fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", b.bind(q.First), b.bind(q.Skip))
	return sb.String(), b.args, nil
}

func (b *sqlBuilder) predicate(p storage.Predicate) (string, error) {
	if !p.IsLeaf() {
		parts := make([]string, 0, len(p.And)+1)
		for _, child := range p.And {
			sql, err := b.predicate(child)
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		if len(p.Or) > 0 {
			alts := make([]string, 0, len(p.Or))
			for _, child := range p.Or {
				sql, err := b.predicate(child)
				if err != nil {
					return "", err
				}
				alts = append(alts, sql)
			}
			parts = append(parts, "("+strings.Join(alts, " OR ")+")")
		}
		if len(parts) == 0 {
			return "TRUE", nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	}

	field, ok := b.entity.Field(p.Field)
	if !ok {
		return "", fmt.Errorf("unknown %s field: %s", b.entity.Name, p.Field)
	}
	col := field.Column
	cast := ""
	arrayCast := "::text[]"
	if field.Kind == storage.KindInt {
		cast = "::numeric"
		// pgx has no binary plan for []string into numeric[]; send text[] and cast server side.
		arrayCast = "::text[]::numeric[]"
	}

	switch p.Op {
	case storage.OpEq:
		return fmt.Sprintf("%s = %s%s", col, b.bind(p.Value), cast), nil
	case storage.OpNot:
		return fmt.Sprintf("%s <> %s%s", col, b.bind(p.Value), cast), nil
	case storage.OpGt:
		return fmt.Sprintf("%s > %s%s", col, b.bind(p.Value), cast), nil
	case storage.OpGte:
		return fmt.Sprintf("%s >= %s%s", col, b.bind(p.Value), cast), nil
	case storage.OpLt:
		return fmt.Sprintf("%s < %s%s", col, b.bind(p.Value), cast), nil
	case storage.OpLte:
		return fmt.Sprintf("%s <= %s%s", col, b.bind(p.Value), cast), nil
	case storage.OpContains:
		return fmt.Sprintf("strpos(%s, %s) > 0", col, b.bind(p.Value)), nil
	case storage.OpNotContains:
		return fmt.Sprintf("strpos(%s, %s) = 0", col, b.bind(p.Value)), nil
	case storage.OpIn:
		return fmt.Sprintf("%s = ANY(%s%s)", col, b.bind(p.Values), arrayCast), nil
	case storage.OpNotIn:
		return fmt.Sprintf("NOT (%s = ANY(%s%s))", col, b.bind(p.Values), arrayCast), nil
	default:
		return "", fmt.Errorf("unsupported operator: %s", p.Op)
	}
}
