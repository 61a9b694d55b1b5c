package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/conneroisu/linkpage/internal/links"
)

// Parse decodes a configuration document and shallow-merges it over
// Default. Every top-level key present in data replaces the default value
// wholesale; nested objects are not merged. Unknown keys and values of the
// wrong type are ignored and remembered for the linter. Only a document
// that is not a JSON object, or a link entry that is neither a string nor
// an object, is an error. A JSON null document yields the defaults.
func Parse(data []byte) (*Profile, error) {
	p := Default()

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return p, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("configuration must be a JSON object")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]

		var err error
		switch key {
		case "avatar":
			replace(p, key, &p.Avatar, value)
		case "name":
			replace(p, key, &p.Name, value)
		case "biography":
			replace(p, key, &p.Biography, value)
		case "domain":
			replace(p, key, &p.Domain, value)
		case "theme":
			replace(p, key, &p.Theme, value)
		case "seo":
			replace(p, key, &p.SEO, value)
		case "analytics":
			replace(p, key, &p.Analytics, value)
		case "branding":
			replace(p, key, &p.Branding, value)
		case "links":
			err = p.replaceLinks(value)
		default:
			p.unknownKeys = append(p.unknownKeys, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	return p, nil
}

// replace decodes raw into a zero T and only then overwrites dst, so a
// present key never inherits fields from the default. A value of the wrong
// JSON type keeps the default; mistyped nested fields are left zero. Both
// are remembered for the linter.
func replace[T any](p *Profile, key string, dst *T, raw json.RawMessage) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		p.mistype(key, err.Error())
		return
	}

	var v T
	if generic != nil {
		want := reflect.TypeOf(v).Kind()
		if !kindMatches(want, generic) {
			p.mistype(key, fmt.Sprintf("expected %s, got %s, the default is kept", describeKind(want), describeJSON(generic)))
			return
		}
		if want == reflect.Struct {
			for _, msg := range links.DecodeFields(generic.(map[string]interface{}), &v) {
				p.mistype(key, msg+", the field is left empty")
			}
		} else {
			reflect.ValueOf(&v).Elem().Set(reflect.ValueOf(generic).Convert(reflect.TypeOf(v)))
		}
	}
	*dst = v
}

// replaceLinks keeps the default links when the value is not an object.
// Entries that are neither strings nor objects are still an error.
func (p *Profile) replaceLinks(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] != '{' && !bytes.Equal(trimmed, []byte("null")) {
		var generic interface{}
		_ = json.Unmarshal(trimmed, &generic)
		p.mistype("links", fmt.Sprintf("expected an object, got %s, the default is kept", describeJSON(generic)))
		return nil
	}

	var l links.Links
	if err := json.Unmarshal(trimmed, &l); err != nil {
		return err
	}
	p.Links = l
	return nil
}

func (p *Profile) mistype(field, message string) {
	p.mistyped = append(p.mistyped, Issue{Field: field, Message: message})
}

func kindMatches(want reflect.Kind, v interface{}) bool {
	switch v.(type) {
	case string:
		return want == reflect.String
	case bool:
		return want == reflect.Bool
	case map[string]interface{}:
		return want == reflect.Struct
	default:
		return false
	}
}

func describeKind(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Struct:
		return "an object"
	default:
		return k.String()
	}
}

func describeJSON(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
