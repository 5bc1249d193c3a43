package formatting

import "sort"

// InsertionIndex finds the index of the first annotation at offset, or the
// index at which an annotation for offset would have to be inserted.
func InsertionIndex(f Formatting, offset uint32) int {
	return sort.Search(len(f), func(i int) bool {
		return f[i].Offset >= offset
	})
}

// FirstIndexAtOrAfter returns the index of the first annotation at the given
// offset, or of the next existing offset when there is no exact match.
//
// Returns len(f) if no annotation at or beyond offset exists.
func FirstIndexAtOrAfter(f Formatting, offset uint32) int {
	index := InsertionIndex(f, offset)
	for index > 0 && f[index-1].Offset == offset {
		index--
	}
	return index
}

// FirstIndexStrictlyAfter returns the index of the first annotation with an
// offset higher than the given one, or len(f).
func FirstIndexStrictlyAfter(f Formatting, offset uint32) int {
	index := InsertionIndex(f, offset)
	for index < len(f) && f[index].Offset == offset {
		index++
	}
	return index
}

// Translate returns a new list with every offset shifted by delta.
func Translate(f Formatting, delta int64) Formatting {
	if f == nil {
		return nil
	}
	out := make(Formatting, len(f))
	for i, a := range f {
		out[i] = a.Translate(delta)
	}
	return out
}
