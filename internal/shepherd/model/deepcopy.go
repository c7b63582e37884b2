package model

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// DeepCopy produces an independent copy of src via a marshal/unmarshal
// round trip, the technique grounded on maiko-SDBX's
// deepCopyServiceDefinition: it guarantees no slice or map in the copy
// aliases one in src, which spec.md §4.3 requires of every factory
// helper. Falls back to returning the zero value on marshal failure,
// which cannot happen for well-formed in-memory trees built by this
// package.
func DeepCopy[T any](src T) T {
	var dst T
	data, err := yaml.Marshal(src)
	if err != nil {
		return dst
	}
	if err := yaml.Unmarshal(data, &dst); err != nil {
		return dst
	}
	return dst
}

// Boolify reports whether s case-insensitively spells "true" or
// "false", and its coerced value. Fields tagged `boolify:"true"` in the
// model are stored as strings (to preserve arbitrary literal / unknown
// placeholder text) but rendered as genuine YAML booleans by the
// compose renderer when they parse as true/false.
func Boolify(s string) (value bool, ok bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}
