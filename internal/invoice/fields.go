package invoice

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Extra holds stored fields the typed model does not name. They are carried
// through load and save untouched.
type Extra map[string]json.RawMessage

// fieldSet lists the json keys a type encodes and which of them are strings.
type fieldSet struct {
	known map[string]struct{}
	text  map[string]struct{}
}

// fieldsOf collects the json keys t encodes, following embedded structs.
func fieldsOf(t reflect.Type) fieldSet {
	fs := fieldSet{known: make(map[string]struct{}), text: make(map[string]struct{})}
	fs.add(t)

	return fs
}

func (fs fieldSet) add(t reflect.Type) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			fs.add(f.Type)
			continue
		}

		if !f.IsExported() {
			continue
		}

		if name == "" {
			name = f.Name
		}

		fs.known[name] = struct{}{}

		if f.Type.Kind() == reflect.String {
			fs.text[name] = struct{}{}
		}
	}
}

// splitExtra decodes raw into v and returns the keys v does not know about.
// String fields stored as bare numbers or booleans are read as their literal
// text, the same way record identifiers are.
func splitExtra(raw []byte, v any, fields fieldSet) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}

	if quoteBareScalars(all, fields.text) {
		var err error
		if raw, err = json.Marshal(all); err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}

	var extra Extra

	for k, val := range all {
		if _, ok := fields.known[k]; ok {
			continue
		}

		if extra == nil {
			extra = make(Extra)
		}

		extra[k] = val
	}

	return extra, nil
}

// quoteBareScalars rewrites the numbers and booleans under keys as JSON
// strings and reports whether anything changed.
func quoteBareScalars(all map[string]json.RawMessage, keys map[string]struct{}) bool {
	var changed bool

	for k := range keys {
		val, ok := all[k]
		if !ok || len(val) == 0 {
			continue
		}

		switch val[0] {
		case '"', 'n', '{', '[':
			continue
		}

		quoted, err := json.Marshal(string(val))
		if err != nil {
			continue
		}

		all[k] = quoted
		changed = true
	}

	return changed
}

// joinExtra encodes v and adds the extra keys it does not already set.
func joinExtra(v any, extra Extra) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return raw, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}

	for k, val := range extra {
		if _, ok := all[k]; !ok {
			all[k] = val
		}
	}

	return json.Marshal(all)
}
