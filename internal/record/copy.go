package record

import "github.com/mohae/deepcopy"

// Clone returns a deep copy of v. Slices, maps and pointed-to values are
// duplicated, so the copy shares no mutable state with v.
func Clone[T any](v T) T {
	c, ok := deepcopy.Copy(v).(T)
	if !ok {
		// deepcopy returns nil for nil interfaces and pointers.
		var zero T
		return zero
	}
	return c
}

// CopyWith returns a new record built from v with edits applied in order.
// v is never modified. Nested records are updated by editing through the
// pointer, and an optional field set to nil becomes absent:
//
//	updated := record.CopyWith(resp, func(r *model.CreateAPIKeyResponse) {
//		r.APIKey.UsageCount = 5
//		r.APIKey.Description = nil
//	})
func CopyWith[T any](v T, edits ...func(*T)) T {
	c := Clone(v)
	for _, edit := range edits {
		if edit != nil {
			edit(&c)
		}
	}
	return c
}
