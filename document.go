package translationloader

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// PathSeparator joins the keys of nested sections into a message key.
	PathSeparator = "."

	// VersionKey is the root key that holds the version of a translation file.
	VersionKey = "v"
)

// flatten walks a decoded document and writes every value as a message.
// Nested maps become dotted keys and lists are joined with a newline.
// The root VersionKey is skipped.
func flatten(doc map[string]any, prefix string, out map[string]string) {
	for key, value := range doc {
		if prefix == "" && key == VersionKey {
			continue
		}

		flattenValue(prefix+key, value, out)
	}
}

func flattenValue(key string, value any, out map[string]string) {
	switch v := value.(type) {
	case nil:
		return
	case map[string]any:
		flatten(v, key+PathSeparator, out)
	case map[any]any:
		for k, nested := range v {
			flattenValue(key+PathSeparator+stringify(k), nested, out)
		}
	case []any:
		lines := make([]string, 0, len(v))
		for _, elem := range v {
			if elem == nil {
				continue
			}
			lines = append(lines, stringify(elem))
		}
		out[key] = strings.Join(lines, "\n")
	default:
		out[key] = stringify(v)
	}
}

// Number is a decoded number kept as it was written, such as 1.0 or 0x1F.
type Number string

func (n Number) String() string {
	return string(n)
}

// stringify converts a decoded scalar to its natural string form: 100, 12.3, 12.0, true.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprint(value)
}

// formatFloat keeps a fraction on whole numbers so 1.0 does not read as 1.
func formatFloat(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsRune(s, '.') {
		return s
	}

	return s + ".0"
}

// setPath writes value at the dotted key. A flat key that already exists at some level
// is overwritten in place, otherwise missing sections are created. A section is never
// replaced by a message.
func setPath(doc map[string]any, key string, value any) error {
	if !setValue(doc, key, value) {
		return fmt.Errorf("%w: %q holds a section", ErrKeyConflict, key)
	}

	return nil
}

func setValue(doc map[string]any, key string, value any) bool {
	if existing, ok := doc[key]; ok {
		if isSection(existing) && !isSection(value) {
			return false
		}

		doc[key] = value
		return true
	}

	head, rest, found := strings.Cut(key, PathSeparator)
	if !found {
		doc[key] = value
		return true
	}

	switch section := doc[head].(type) {
	case map[string]any:
		return setValue(section, rest, value)
	case map[any]any:
		converted := cloneValue(section).(map[string]any)
		if !setValue(converted, rest, value) {
			return false
		}
		doc[head] = converted
	case nil:
		nested := make(map[string]any)
		setValue(nested, rest, value)
		doc[head] = nested
	default:
		// head holds a message, keep the key flat next to it.
		doc[key] = value
	}

	return true
}

func isSection(value any) bool {
	switch value.(type) {
	case map[string]any, map[any]any:
		return true
	}

	return false
}

// deletePath removes the value at the dotted key. Sections left empty are removed too.
func deletePath(doc map[string]any, key string) bool {
	if _, ok := doc[key]; ok {
		delete(doc, key)
		return true
	}

	head, rest, found := strings.Cut(key, PathSeparator)
	if !found {
		return false
	}

	switch section := doc[head].(type) {
	case map[string]any:
		if !deletePath(section, rest) {
			return false
		}

		if len(section) == 0 {
			delete(doc, head)
		}

		return true
	case map[any]any:
		converted := cloneValue(section).(map[string]any)
		if !deletePath(converted, rest) {
			return false
		}

		if len(converted) == 0 {
			delete(doc, head)
		} else {
			doc[head] = converted
		}

		return true
	}

	return false
}

// flattenDocument returns all leaves of doc as flat dotted keys, including the version.
// It is used by formats without sections.
func flattenDocument(doc map[string]any) map[string]string {
	out := make(map[string]string)

	for key, value := range doc {
		flattenValue(key, value, out)
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func cloneDocument(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))

	for k, v := range doc {
		out[k] = cloneValue(v)
	}

	return out
}

// cloneValue deep copies sections and lists. Sections with non-string keys
// are converted to string keys.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneDocument(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, nested := range v {
			out[stringify(k)] = cloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = cloneValue(elem)
		}
		return out
	}

	return value
}
