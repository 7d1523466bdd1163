package filter_test

import (
	"testing"

	"github.com/rag-nar1/DiskFilters/filter"
)

func TestCanonicalDistinct(t *testing.T) {
	// values of different kinds must never share a canonical form
	elems := []any{
		1,
		"1",
		[]byte("1"),
		uint(1),
		1.0,
		true,
		"true",
		int64(1),
		"i:1",
	}

	seen := make(map[string]any)
	for _, elem := range elems {
		canon := filter.Canonical(elem)
		if prev, ok := seen[canon]; ok {
			// int widths are allowed to share a form, nothing else is
			if _, isInt := prev.(int); isInt {
				if _, alsoInt := elem.(int64); alsoInt {
					continue
				}
			}
			t.Errorf("canonical form %q shared by %v (%T) and %v (%T)", canon, prev, prev, elem, elem)
		}
		seen[canon] = elem
	}
}

func TestCanonicalDeterministic(t *testing.T) {
	for _, elem := range []any{42, "abc", []byte("abc"), 3.14, false} {
		if filter.Canonical(elem) != filter.Canonical(elem) {
			t.Errorf("canonical form of %v is not stable", elem)
		}
	}
}
