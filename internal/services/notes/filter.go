package notes

import (
	"bytes"
	"slices"
	"strings"
)

// SortNewestFirst orders notes by CreatedAt descending, ties broken by id
// descending. The sort is stable.
func SortNewestFirst(notes []*Note) {
	slices.SortStableFunc(notes, func(a, b *Note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
}

// FilterByTags keeps notes carrying at least one of tags. An empty tag set
// returns notes unchanged.
func FilterByTags(notes []*Note, tags []string) []*Note {
	if len(tags) == 0 {
		return notes
	}

	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	out := make([]*Note, 0, len(notes))
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := want[t]; ok {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Search keeps notes whose title or content contains q, ignoring case.
// Input order is preserved; a blank query returns notes unchanged.
func Search(notes []*Note, q string) []*Note {
	if strings.TrimSpace(q) == "" {
		return notes
	}
	q = strings.ToLower(q)

	out := make([]*Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}
