package storage

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"superPayroll/internal/model"
)

// record exposes field values of a stored record by query field name.
type record interface {
	value(name string) string
}

type employeeRecord model.Employee

func (r employeeRecord) value(name string) string {
	switch name {
	case "id":
		return r.ID
	case "name":
		return r.Name
	case "age":
		return strconv.FormatUint(uint64(r.Age), 10)
	case "contactAddress":
		return r.ContactAddress
	case "country":
		return r.Country
	case "addr":
		return r.Addr
	case "employer":
		return r.Employer
	case "status":
		return string(r.Status)
	case "updatedAt":
		return strconv.FormatUint(r.UpdatedAt, 10)
	default:
		return ""
	}
}

type streamRecord model.Stream

func (r streamRecord) value(name string) string {
	switch name {
	case "id":
		return r.ID
	case "sender":
		return r.Sender
	case "receiver":
		return r.Receiver
	case "to":
		return r.To
	case "token":
		return r.Token
	case "status":
		return string(r.Status)
	case "flowRate":
		return r.FlowRate
	case "createdAt":
		return strconv.FormatUint(r.CreatedAt, 10)
	case "updatedAt":
		return strconv.FormatUint(r.UpdatedAt, 10)
	case "txHash":
		return r.TxHash
	default:
		return ""
	}
}

func matches(entity Entity, r record, p *Predicate) bool {
	if p == nil {
		return true
	}
	if !p.IsLeaf() {
		for i := range p.And {
			if !matches(entity, r, &p.And[i]) {
				return false
			}
		}
		if len(p.Or) == 0 {
			return true
		}
		for i := range p.Or {
			if matches(entity, r, &p.Or[i]) {
				return true
			}
		}
		return false
	}

	field, ok := entity.Field(p.Field)
	if !ok {
		return false
	}
	actual := normalizeValue(field, r.value(p.Field))

	switch p.Op {
	case OpEq:
		return compareValues(field, actual, p.Value) == 0
	case OpNot:
		return compareValues(field, actual, p.Value) != 0
	case OpContains:
		return strings.Contains(actual, p.Value)
	case OpNotContains:
		return !strings.Contains(actual, p.Value)
	case OpGt:
		return compareValues(field, actual, p.Value) > 0
	case OpGte:
		return compareValues(field, actual, p.Value) >= 0
	case OpLt:
		return compareValues(field, actual, p.Value) < 0
	case OpLte:
		return compareValues(field, actual, p.Value) <= 0
	case OpIn, OpNotIn:
		found := false
		for _, v := range p.Values {
			if compareValues(field, actual, v) == 0 {
				found = true
				break
			}
		}
		return found == (p.Op == OpIn)
	default:
		return false
	}
}

func compareValues(field Field, a, b string) int {
	if field.Kind == KindInt {
		x, okX := new(big.Int).SetString(a, 10)
		y, okY := new(big.Int).SetString(b, 10)
		if okX && okY {
			return x.Cmp(y)
		}
	}
	return strings.Compare(a, b)
}

// selectRecords filters, orders (with id as tiebreaker) and pages records.
// q must be normalized.
func selectRecords[T record](entity Entity, all []T, q Query) []T {
	out := make([]T, 0, len(all))
	for _, r := range all {
		if matches(entity, r, q.Where) {
			out = append(out, r)
		}
	}

	orderField, _ := entity.Field(q.OrderBy)
	idField, _ := entity.Field("id")
	sort.SliceStable(out, func(i, j int) bool {
		c := compareValues(orderField, out[i].value(q.OrderBy), out[j].value(q.OrderBy))
		if c == 0 {
			c = compareValues(idField, out[i].value("id"), out[j].value("id"))
		}
		if q.Desc() {
			return c > 0
		}
		return c < 0
	})

	if q.Skip >= len(out) {
		return out[:0]
	}
	out = out[q.Skip:]
	if q.First < len(out) {
		out = out[:q.First]
	}
	return out
}
