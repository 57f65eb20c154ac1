package galleri

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Tags is an ordered list of non-empty, trimmed tags. Duplicates are kept.
//
// On disk tags are a single comma-separated string; in JSON requests either a
// string or an array is accepted.
type Tags []string

// ParseTags splits a comma-separated string into tags.
func ParseTags(s string) Tags {
	ts := Tags{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			ts = append(ts, t)
		}
	}
	return ts
}

// String returns the comma-separated form.
func (ts Tags) String() string {
	return strings.Join(ts, ", ")
}

// MarshalJSON encodes tags as a comma-separated string.
func (ts Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON accepts a comma-separated string or an array of strings.
func (ts *Tags) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*ts = ParseTags(s)
		return nil
	}

	var ss []string
	if err := json.Unmarshal(b, &ss); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings: %w", err)
	}
	// Elements may themselves contain commas.
	*ts = ParseTags(strings.Join(ss, ","))
	return nil
}

// TagSet returns the sorted, de-duplicated union of the given tag lists.
func TagSet(lists ...[]string) []string {
	all := []string{}
	for _, l := range lists {
		all = append(all, l...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}
