package docstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Collection declares one logical collection: its secondary views and the
// fields whose values must be unique across its documents.
type Collection struct {
	Name   string           `json:"name"`
	Views  []ViewDefinition `json:"views"`
	Unique []string         `json:"unique,omitempty"`
}

// ViewDefinition is a data-only index rule. The key is built from KeyFields
// in order and the value is the ValueField of the document, if any.
type ViewDefinition struct {
	Name       string   `json:"name"`
	KeyFields  []string `json:"keyFields"`
	ValueField string   `json:"valueField,omitempty"`
}

func (c Collection) validate() error {
	if c.Name == "" || strings.ContainsAny(c.Name, "/") {
		return fmt.Errorf("invalid collection name %q", c.Name)
	}
	seen := make(map[string]bool, len(c.Views))
	for _, v := range c.Views {
		if v.Name == "" || len(v.KeyFields) == 0 {
			return fmt.Errorf("collection %s: view %q needs a name and key fields", c.Name, v.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf("collection %s: duplicate view %q", c.Name, v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

func (c Collection) view(name string) (ViewDefinition, bool) {
	for _, v := range c.Views {
		if v.Name == name {
			return v, true
		}
	}
	return ViewDefinition{}, false
}

// emitted is one row produced by evaluating a view against a document.
type emitted struct {
	view  string
	key   string
	value string
}

// evaluate runs every view of c over body. A view emits nothing when any of
// its key fields is missing or empty.
func (c Collection) evaluate(fields map[string]any) ([]emitted, error) {
	var rows []emitted
	for _, v := range c.Views {
		parts := make([]any, 0, len(v.KeyFields))
		for _, f := range v.KeyFields {
			val, ok := fields[f]
			if !ok || isEmpty(val) {
				parts = nil
				break
			}
			parts = append(parts, val)
		}
		if parts == nil {
			continue
		}

		key, err := encodeKey(parts)
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", v.Name, err)
		}
		value := []byte("null")
		if v.ValueField != "" {
			if val, ok := fields[v.ValueField]; ok {
				if value, err = json.Marshal(val); err != nil {
					return nil, fmt.Errorf("view %s: %w", v.Name, err)
				}
			}
		}
		rows = append(rows, emitted{view: v.Name, key: key, value: string(value)})
	}
	return rows, nil
}

// uniqueValues returns the claimed value for every unique field present.
func (c Collection) uniqueValues(fields map[string]any) map[string]string {
	out := make(map[string]string, len(c.Unique))
	for _, f := range c.Unique {
		val, ok := fields[f]
		if !ok || isEmpty(val) {
			continue
		}
		if s, ok := val.(string); ok {
			out[f] = s
			continue
		}
		b, _ := json.Marshal(val)
		out[f] = string(b)
	}
	return out
}

// encodeKey renders a single-part key as the bare JSON value and a compound
// key as a JSON array, so lookups can compare encoded strings.
func encodeKey(parts []any) (string, error) {
	var (
		b   []byte
		err error
	)
	if len(parts) == 1 {
		b, err = json.Marshal(parts[0])
	} else {
		b, err = json.Marshal(parts)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Key builds a compound view key from its parts.
func Key(parts ...any) any {
	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

func decodeFields(body []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("document body must be a JSON object: %w", err)
	}
	return fields, nil
}
