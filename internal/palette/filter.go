package palette

import "strings"

// Filter returns the entries visible at location whose search key contains
// query. Both sides are normalized. The input order is kept.
func Filter(entries []*Entry, query, location string) []*Entry {
	q := Normalize(query)
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e == nil || !e.visibleAt(location) {
			continue
		}
		key := e.SearchKey
		if key == "" {
			key = e.Name
		}
		if strings.Contains(Normalize(key), q) {
			out = append(out, e)
		}
	}
	return out
}
