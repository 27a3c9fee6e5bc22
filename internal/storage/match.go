package storage

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Scan backends (memory, local, sqlite) share these helpers so that
// filtering and ordering behave identically to the native-query backends.

// ApplyList filters, sorts, and pages raw JSON documents per opts. Documents
// that fail to decode are skipped rather than failing the whole listing;
// legacy or hand-edited records are expected in production data.
func ApplyList(docs [][]byte, opts ListOptions) [][]byte {
	type decoded struct {
		raw    []byte
		fields map[string]any
	}

	items := make([]decoded, 0, len(docs))
	for _, raw := range docs {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		if !MatchFilter(fields, opts.Filter) {
			continue
		}
		items = append(items, decoded{raw: raw, fields: fields})
	}

	desc := opts.OrderDirection == Descending
	sort.SliceStable(items, func(i, j int) bool {
		if opts.OrderBy != "" {
			c := Compare(items[i].fields[opts.OrderBy], items[j].fields[opts.OrderBy])
			if c != 0 {
				if desc {
					return c > 0
				}
				return c < 0
			}
		}
		// Final tiebreak: id ascending, regardless of direction.
		idI, _ := items[i].fields["id"].(string)
		idJ, _ := items[j].fields["id"].(string)
		return idI < idJ
	})

	start := opts.Offset
	if start > len(items) {
		start = len(items)
	}
	end := len(items)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	out := make([][]byte, 0, end-start)
	for _, it := range items[start:end] {
		out = append(out, it.raw)
	}
	return out
}

// MatchFilter reports whether a decoded document satisfies an equality
// filter. Filter values are normalized through a JSON round trip so that
// int(5) matches the float64(5) produced by decoding.
func MatchFilter(fields map[string]any, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := fields[key]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(got, normalize(want)) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// Compare orders two decoded JSON values the way Postgres orders jsonb:
// Object > Array > Boolean > Number > String > Null, numbers numerically,
// strings lexicographically. A missing field decodes as nil and sorts first
// ascending.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case nil:
		return 0
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		}
		return 0
	}
	// Arrays and objects are not meaningful sort keys; treat as equal and
	// let the id tiebreak decide.
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	case []any:
		return 4
	default:
		return 5
	}
}
