package pubs

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/autodocs/manuals-cli/internal/model"
)

// nextDataRe locates the __NEXT_DATA__ hydration script regardless of
// attribute order. Server-rendered frameworks embed their page data there.
var nextDataRe = regexp.MustCompile(
	`(?is)<script[^>]*\bid="__NEXT_DATA__"[^>]*>(.*?)</script>`,
)

// ParseHydration extracts the embedded JSON hydration payload from a
// server-rendered page. Returns nil when the script element is absent, not
// marked application/json, or its body does not parse; the caller treats that
// page as yielding zero publications.
func ParseHydration(html string) json.RawMessage {
	m := nextDataRe.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	full := m[0]
	if !strings.Contains(strings.ToLower(full[:strings.IndexByte(full, '>')+1]), `type="application/json"`) {
		return nil
	}
	raw := strings.TrimSpace(m[1])
	if !json.Valid([]byte(raw)) {
		return nil
	}
	return json.RawMessage(raw)
}

// fieldAliases maps each normalized Publication field to its candidate source
// keys, evaluated in priority order; the first present non-empty value wins.
var fieldAliases = map[string][]string{
	"publicationType": {"publicationType", "type", "category"},
	"language":        {"language", "lang", "locale"},
	"title":           {"title", "name", "label"},
	"lineOffDate":     {"lineOffDate", "effectiveDate"},
	"modelType":       {"modelType", "model"},
	"ngtdModelId":     {"ngtdModelId", "modelId"},
	"year":            {"year"},
}

// Collect walks the hydration payload and extracts a Publication from every
// object carrying a partNumber key. The payload's shape is not contractually
// stable, so the walk is structural: an explicit worklist over the tagged
// union of object/array/scalar rather than fixed paths. Records sharing a
// part number are collapsed, last occurrence winning, first-seen position
// preserved.
func Collect(payload json.RawMessage) []model.Publication {
	if payload == nil {
		return nil
	}

	var out []model.Publication
	index := make(map[string]int)

	stack := []json.RawMessage{payload}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch kind(node) {
		case '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(node, &obj); err != nil {
				continue
			}
			if _, ok := obj["partNumber"]; ok {
				pub := extract(obj)
				if pub.PartNumber != "" {
					if i, seen := index[pub.PartNumber]; seen {
						out[i] = pub
					} else {
						index[pub.PartNumber] = len(out)
						out = append(out, pub)
					}
				}
			}
			// Sorted keys keep the walk deterministic; push reversed so the
			// stack visits values in key order.
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, obj[keys[i]])
			}
		case '[':
			var arr []json.RawMessage
			if err := json.Unmarshal(node, &arr); err != nil {
				continue
			}
			for i := len(arr) - 1; i >= 0; i-- {
				stack = append(stack, arr[i])
			}
		}
		// Scalars carry no publications.
	}

	return out
}

// kind returns '{', '[' or 0 for the JSON value in raw.
func kind(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}

// extract normalizes one matched object into a Publication via the alias
// lists. A field whose candidates are all absent, malformed, or empty stays
// empty; no single bad value fails the record.
func extract(obj map[string]json.RawMessage) model.Publication {
	return model.Publication{
		PartNumber:      firstString(obj, "partNumber"),
		PublicationType: aliased(obj, "publicationType"),
		Language:        aliased(obj, "language"),
		Title:           aliased(obj, "title"),
		LineOffDate:     aliased(obj, "lineOffDate"),
		ModelType:       aliased(obj, "modelType"),
		NgtdModelID:     aliased(obj, "ngtdModelId"),
		Year:            aliased(obj, "year"),
	}
}

func aliased(obj map[string]json.RawMessage, field string) string {
	for _, key := range fieldAliases[field] {
		if v := firstString(obj, key); v != "" {
			return v
		}
	}
	return ""
}

// firstString reads obj[key] as a string, accepting numbers. Objects, arrays,
// and nulls are treated as absent.
func firstString(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var v model.FlexString
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return string(v)
}
