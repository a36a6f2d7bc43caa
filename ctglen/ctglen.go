// Package ctglen loads the contig-length JSON file: an array of
// [sort_key, name, length] triples describing every contig a VCF header
// must declare, in the order its sort_key says they should appear.
package ctglen

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Entry is one contig's sort position, name, and length.
type Entry struct {
	SortKey int
	Name    string
	Length  uint32
}

// Load parses r as a JSON array of [sort_key, name, length] triples and
// returns the entries sorted by SortKey, matching the reference tool's
// `target_length.sort()` call on the deserialized (u32, String, u32) tuples.
func Load(r io.Reader) ([]Entry, error) {
	var raw [][3]interface{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("ctglen: parsing contig-length JSON: %w", err)
	}

	entries := make([]Entry, len(raw))
	for i, r := range raw {
		sortKey, ok := r[0].(float64)
		if !ok {
			return nil, fmt.Errorf("ctglen: entry %d: sort_key is not a number", i)
		}
		name, ok := r[1].(string)
		if !ok {
			return nil, fmt.Errorf("ctglen: entry %d: name is not a string", i)
		}
		length, ok := r[2].(float64)
		if !ok {
			return nil, fmt.Errorf("ctglen: entry %d: length is not a number", i)
		}
		entries[i] = Entry{SortKey: int(sortKey), Name: name, Length: uint32(length)}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SortKey != entries[j].SortKey {
			return entries[i].SortKey < entries[j].SortKey
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
