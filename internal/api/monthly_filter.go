package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"superPayroll/internal/payroll"
)

const monthlyFlowRateKey = "monthlyFlowRate"

// translateMonthlyFlowRate rewrites monthlyFlowRate filters, given in tokens per
// month, into flowRate filters in wei per second. Nested and/or groups are rewritten too.
func translateMonthlyFlowRate(where map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(where))
	for key, raw := range where {
		switch {
		case key == "and" || key == "or":
			items, ok := raw.([]interface{})
			if !ok {
				out[key] = raw
				continue
			}
			translated := make([]interface{}, 0, len(items))
			for _, item := range items {
				obj, ok := item.(map[string]interface{})
				if !ok {
					translated = append(translated, item)
					continue
				}
				child, err := translateMonthlyFlowRate(obj)
				if err != nil {
					return nil, err
				}
				translated = append(translated, child)
			}
			out[key] = translated
		case strings.HasPrefix(key, monthlyFlowRateKey):
			suffix := strings.TrimPrefix(key, monthlyFlowRateKey)
			if suffix != "" && !strings.HasPrefix(suffix, "_") {
				out[key] = raw
				continue
			}
			target := "flowRate" + suffix
			if _, dup := where[target]; dup {
				return nil, fmt.Errorf("%s conflicts with %s", key, target)
			}
			value, err := monthlyToPerSecond(key, raw)
			if err != nil {
				return nil, err
			}
			out[target] = value
		default:
			out[key] = raw
		}
	}
	return out, nil
}

func monthlyToPerSecond(key string, raw interface{}) (interface{}, error) {
	if items, ok := raw.([]interface{}); ok {
		converted := make([]interface{}, 0, len(items))
		for _, item := range items {
			v, err := monthlyToPerSecond(key, item)
			if err != nil {
				return nil, err
			}
			converted = append(converted, v)
		}
		return converted, nil
	}

	var amount string
	switch v := raw.(type) {
	case string:
		amount = v
	case json.Number:
		amount = v.String()
	default:
		return nil, fmt.Errorf("%s has unsupported value type %T", key, raw)
	}
	rate, err := payroll.FlowRatePerSecond(amount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return rate.String(), nil
}
