package page

import "sort"

// Sort orders p's children by ascending ordering priority, then title, then
// name, and recurses depth first so every descendant is ordered as well.
// Sorting an already sorted tree leaves it unchanged.
func (p *Page) Sort() {
	sort.SliceStable(p.Children, func(i, j int) bool {
		return less(p.Children[i], p.Children[j])
	})
	for _, c := range p.Children {
		c.Sort()
	}
}

func less(a, b *Page) bool {
	if pa, pb := a.Priority(), b.Priority(); pa != pb {
		return pa < pb
	}
	if ta, tb := a.Title(), b.Title(); ta != tb {
		return ta < tb
	}
	return a.Name < b.Name
}

// IsSorted reports whether p's children and all descendants are in Sort order.
func (p *Page) IsSorted() bool {
	if !sort.SliceIsSorted(p.Children, func(i, j int) bool {
		return less(p.Children[i], p.Children[j])
	}) {
		return false
	}
	for _, c := range p.Children {
		if !c.IsSorted() {
			return false
		}
	}
	return true
}
