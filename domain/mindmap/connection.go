package mindmap

import (
	"encoding/json"
	"strings"
)

// Connection is a directed edge between any two entities. Handles come in two
// formats that must both survive unchanged: the current bare direction
// ("bottom") and the legacy "<entityId>-<direction>" form. The store never
// rewrites or checks them.
type Connection struct {
	ID           string `json:"-"`
	Source       string `json:"-"`
	Target       string `json:"-"`
	SourceHandle string `json:"-"`
	TargetHandle string `json:"-"`

	// Extra carries label, type, animated, style, data and anything else the
	// canvas attaches. A declared key whose value is not a non-empty string,
	// such as a null handle, stays here verbatim and its field is left empty.
	Extra Fields `json:"-"`
}

type connectionKey struct {
	name     string
	required bool
	field    func(*Connection) *string
}

var connectionKeys = []connectionKey{
	{"id", true, func(c *Connection) *string { return &c.ID }},
	{"source", true, func(c *Connection) *string { return &c.Source }},
	{"target", true, func(c *Connection) *string { return &c.Target }},
	{"sourceHandle", false, func(c *Connection) *string { return &c.SourceHandle }},
	{"targetHandle", false, func(c *Connection) *string { return &c.TargetHandle }},
}

func (c *Connection) UnmarshalJSON(data []byte) error {
	var all Fields
	if err := all.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = Connection{}
	for _, k := range connectionKeys {
		if s, ok := all[k.name].(string); ok && s != "" {
			*k.field(c) = s
			delete(all, k.name)
		}
	}
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

func (c Connection) MarshalJSON() ([]byte, error) {
	out := make(Fields, len(c.Extra)+len(connectionKeys))
	for k, v := range c.Extra {
		out[k] = v
	}
	for _, k := range connectionKeys {
		value := *k.field(&c)
		if value != "" {
			out[k.name] = value
			continue
		}
		if _, kept := out[k.name]; !kept && k.required {
			out[k.name] = ""
		}
	}
	return json.Marshal(map[string]any(out))
}

// IsLegacyHandle reports whether handle uses the "<entityId>-<direction>" form.
func IsLegacyHandle(handle string) bool {
	return strings.LastIndexByte(handle, '-') > 0
}
