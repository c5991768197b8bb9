package pattern

import "fmt"

// DecodeRules parses a raw JSON array of rule objects into typed Rules.
func DecodeRules(raw []any) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("rule %d: expected object", i)
		}
		rule := Rule{
			Match:   m["match"],
			Replace: m["replace"],
		}
		_, rule.HasReplace = m["replace"]
		if raw, ok := m["apply_to"]; ok {
			switch v := raw.(type) {
			case string:
				rule.ApplyTo = v
			case []any:
				strs := make([]string, 0, len(v))
				for _, item := range v {
					if s, ok := item.(string); ok {
						strs = append(strs, s)
					}
				}
				rule.ApplyTo = strs
			}
		}
		if s, ok := m["select"].(string); ok {
			rule.Select, rule.HasSelect = s, true
		}
		if list, ok := m["where"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					rule.Where = append(rule.Where, s)
				}
			}
		}
		if s, ok := m["program_select"].(string); ok {
			rule.ProgramSelect, rule.HasProgramSelect = s, true
		}
		if list, ok := m["program_where"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					rule.ProgramWhere = append(rule.ProgramWhere, s)
				}
			}
		}
		if wp, ok := m["where_placeholders"].(map[string]any); ok {
			rule.WherePlaceholders = map[string]string{}
			for k, v := range wp {
				if s, ok := v.(string); ok {
					rule.WherePlaceholders[k] = s
				}
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
