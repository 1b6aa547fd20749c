package resolve

// Settings is an insertion-ordered attribute map. Overwriting a key keeps its
// original position so the output order follows first appearance.
type Settings struct {
	keys   []string
	values map[string]any
}

// NewSettings returns an empty Settings.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]any)}
}

// Set writes a value, replacing any previous value for the same name.
func (s *Settings) Set(name string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.values[name] = value
}

// Get returns the value for name.
func (s *Settings) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Delete removes name, if present.
func (s *Settings) Delete(name string) {
	if _, ok := s.values[name]; !ok {
		return
	}
	delete(s.values, name)
	for i, k := range s.keys {
		if k == name {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the names in first-appearance order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Len returns the number of entries.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns an independent copy. Slice values are shared.
func (s *Settings) Clone() *Settings {
	c := NewSettings()
	if s == nil {
		return c
	}
	for _, k := range s.keys {
		c.Set(k, s.values[k])
	}
	return c
}

// Map returns a copy of the entries as a plain map.
func (s *Settings) Map() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Truthy reports whether an attribute value counts as enabled. Nil, false,
// zero numbers, empty strings and empty lists are falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
