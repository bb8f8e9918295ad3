package config

import "fmt"

// valueSet reads typed values out of a decoded map.
type valueSet struct {
	raw    map[string]any
	prefix string
}

func values(raw map[string]any) valueSet { return valueSet{raw: raw} }

func (v valueSet) typeError(key, want string, got any) error {
	return &ValueError{Key: v.prefix + key, Reason: fmt.Sprintf("want %s, got %T", want, got)}
}

func (v valueSet) str(key string, dst *string) error {
	val, ok := v.raw[key]
	if !ok {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return v.typeError(key, "string", val)
	}
	*dst = s
	return nil
}

func (v valueSet) boolean(key string, dst *bool) error {
	val, ok := v.raw[key]
	if !ok {
		return nil
	}
	b, ok := val.(bool)
	if !ok {
		return v.typeError(key, "boolean", val)
	}
	*dst = b
	return nil
}

func (v valueSet) strings(key string, dst *[]string) error {
	val, ok := v.raw[key]
	if !ok {
		return nil
	}
	var out []string
	switch list := val.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		out = make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return v.typeError(key, "list of strings", val)
			}
			out = append(out, s)
		}
	default:
		return v.typeError(key, "list of strings", val)
	}
	*dst = out
	return nil
}
