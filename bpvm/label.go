package bpvm

import (
	"fmt"
	"sort"
)

// Label names a code address inside a listing.
type Label struct {
	Offset int
	Name   string
}

// Labels is an implementation of sort.Interface for *Label slices.
type Labels []*Label

var _ sort.Interface = (Labels)(nil)

func (x Labels) Len() int {
	return len(x)
}

func (x Labels) Less(i, j int) bool {
	a, b := x[i], x[j]
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return a.Name < b.Name
}

func (x Labels) Swap(i, j int) {
	x[i], x[j] = x[j], x[i]
}

// Find returns the label for the given code address, or a synthetic one if
// none was generated for it.
func (x Labels) Find(pc int) *Label {
	i := sort.Search(len(x), func(i int) bool {
		return x[i].Offset >= pc
	})
	if i < len(x) && x[i].Offset == pc {
		return x[i]
	}
	return &Label{
		Offset: pc,
		Name:   fmt.Sprintf(".ANON@%d", pc),
	}
}

// makeLabels assigns .L0, .L1, ... to every address that a FAILPOINT or
// JUMP in code can reach, in address order.
func makeLabels(code Code) Labels {
	seen := make(map[int]struct{})
	var labels Labels
	for pc, op := range code {
		if op.Code.Meta().Operand != OperandOffset {
			continue
		}
		target := addOffset(pc+1, op.Offset, len(code))
		if _, found := seen[target]; !found {
			seen[target] = struct{}{}
			labels = append(labels, &Label{Offset: target})
		}
	}
	sort.Sort(labels)
	for i, label := range labels {
		label.Name = fmt.Sprintf(".L%d", i)
	}
	return labels
}
