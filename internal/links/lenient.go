package links

import (
	"errors"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeFields copies a decoded JSON object into the exported fields of
// dst, matching on json tags. A field whose value has the wrong type keeps
// its zero value and is reported in the returned messages; the remaining
// fields are still decoded.
func DecodeFields(src map[string]interface{}, dst interface{}) []string {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  dst,
		TagName: "json",
	})
	if err != nil {
		return []string{err.Error()}
	}

	var messages []string
	for _, e := range leafErrors(dec.Decode(src)) {
		messages = append(messages, e.Error())
	}
	return messages
}

// leafErrors flattens the joined errors mapstructure returns.
func leafErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, leafErrors(e)...)
		}
		return out
	}
	if inner := errors.Unwrap(err); inner != nil {
		return leafErrors(inner)
	}
	return []error{err}
}
