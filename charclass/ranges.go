package charclass

import (
	"sort"
)

// Range represents a range of consecutive bytes.
//
// If Lo < Hi, then this Range represents the bytes Lo, Lo+1, ..., Hi-1, Hi.
//
// If Lo == Hi, then this Range represents the single byte Lo.
//
// If Lo > Hi, then this Range represents the null set.
//
type Range struct {
	Lo byte
	Hi byte
}

// Ranges returns a Class that matches any byte that falls in one of the
// given Range entries. It is the natural choice for classes like [0-9A-Fa-f].
func Ranges(rs ...Range) Class {
	return &ranges{List: coalesceRanges(rs)}
}

type ranges struct {
	List []Range
}

var _ Class = (*ranges)(nil)

func (c *ranges) Match(b byte) bool {
	i := sort.Search(len(c.List), func(i int) bool {
		return c.List[i].Hi >= b
	})
	if i >= len(c.List) {
		return false
	}
	return c.List[i].Lo <= b
}

func (c *ranges) ForEach(f func(b byte)) {
	for _, r := range c.List {
		for i := uint(r.Lo); i <= uint(r.Hi); i++ {
			f(byte(i))
		}
	}
}

func (c *ranges) String() string {
	return classString(c)
}

type rangeSlice []Range

var _ sort.Interface = (rangeSlice)(nil)

func (x rangeSlice) Len() int           { return len(x) }
func (x rangeSlice) Less(i, j int) bool { return x[i].Lo < x[j].Lo }
func (x rangeSlice) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

// coalesceRanges drops empty ranges, sorts the rest by Lo, and merges the
// ones that overlap or touch. Match relies on the result being sorted and
// disjoint.
func coalesceRanges(a []Range) []Range {
	b := make([]Range, 0, len(a))
	for _, r := range a {
		if r.Hi >= r.Lo {
			b = append(b, r)
		}
	}
	sort.Sort(rangeSlice(b))
	if len(b) < 2 {
		return b
	}

	c := b[:1]
	for _, r := range b[1:] {
		last := &c[len(c)-1]
		switch {
		case last.Hi >= r.Hi:
			// contained
		case last.Hi+1 >= r.Lo:
			last.Hi = r.Hi
		default:
			c = append(c, r)
		}
	}
	return c
}
