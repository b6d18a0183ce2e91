// Package charclass implements sets of bytes, as used by lexers to decide
// where one token ends and the next begins.
package charclass

// Class is a predicate that returns true for certain bytes.
//
// Implementations of Class must not change their state on a call to Match.
//
type Class interface {
	// Match returns true iff byte b is in the class.
	Match(b byte) bool

	// ForEach calls f exactly once for each byte in the class, in
	// ascending order.
	ForEach(f func(b byte))

	// String returns a bracket expression for the class, such as [0-9a-f].
	String() string
}

// Bytes appends each byte matched by c to out, then returns the updated slice.
func Bytes(c Class, out []byte) []byte {
	c.ForEach(func(b byte) { out = append(out, b) })
	return out
}

// Span returns the length of the longest prefix of in whose bytes all
// belong to c.
func Span(c Class, in []byte) int {
	for i, b := range in {
		if !c.Match(b) {
			return i
		}
	}
	return len(in)
}

// SpanString is Span for strings.
func SpanString(c Class, in string) int {
	for i := 0; i < len(in); i++ {
		if !c.Match(in[i]) {
			return i
		}
	}
	return len(in)
}

// Any returns a Class that matches every byte.
func Any() Class {
	bs := &bitset{}
	for i := range bs.Set {
		bs.Set[i] = ^uint32(0)
	}
	return bs
}

// Exactly returns a Class that matches one specific byte.
func Exactly(b byte) Class {
	return exact(b)
}

type exact byte

var _ Class = exact(0)

func (c exact) Match(b byte) bool      { return b == byte(c) }
func (c exact) ForEach(f func(b byte)) { f(byte(c)) }
func (c exact) String() string         { return classString(c) }

// Set returns a Class that matches any byte of s.
func Set(s string) Class {
	bs := &bitset{}
	for i := 0; i < len(s); i++ {
		bs.add(s[i])
	}
	return bs
}

// Not returns a Class that matches every byte that c does not.
func Not(c Class) Class {
	bs := &bitset{}
	for i := uint(0); i < 256; i++ {
		if !c.Match(byte(i)) {
			bs.add(byte(i))
		}
	}
	return bs
}

// Or returns a Class that matches a byte iff any of cs match it.
func Or(cs ...Class) Class {
	bs := &bitset{}
	for _, c := range cs {
		c.ForEach(bs.add)
	}
	return bs
}

// bitset is a Class stored as a 256-bit map.
type bitset struct {
	Set [8]uint32
}

var _ Class = (*bitset)(nil)

func (bs *bitset) add(b byte) {
	index, mask := bitIM(b)
	bs.Set[index] |= mask
}

func (bs *bitset) Match(b byte) bool {
	index, mask := bitIM(b)
	return (bs.Set[index] & mask) == mask
}

func (bs *bitset) ForEach(f func(b byte)) {
	for i := uint(0); i < 8; i++ {
		if bs.Set[i] == 0 {
			continue
		}
		for j := uint(0); j < 32; j++ {
			mask := uint32(1) << j
			if (bs.Set[i] & mask) == mask {
				f(byte(i<<5) | byte(j))
			}
		}
	}
}

func (bs *bitset) String() string {
	return classString(bs)
}

func bitIM(b byte) (index uint, mask uint32) {
	i := uint((b & 0xe0) >> 5)
	j := uint(b & 0x1f)
	mask = uint32(1) << j
	return i, mask
}
