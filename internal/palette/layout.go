package palette

import "sort"

// Row is the vertical extent of a rendered entry, in terminal lines.
type Row struct {
	Top    int
	Height int
}

// Bottom is the first line below the row.
func (r Row) Bottom() int { return r.Top + r.Height }

// Layout records where each filtered entry is drawn. It is indexed like the
// filtered list and pruned with it.
type Layout struct {
	rows []Row
}

// Set records row i, growing the registry as needed.
func (l *Layout) Set(i int, r Row) {
	if i < 0 {
		return
	}
	for len(l.rows) <= i {
		l.rows = append(l.rows, Row{})
	}
	l.rows[i] = r
}

// Prune drops rows at index n and beyond.
func (l *Layout) Prune(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(l.rows) {
		l.rows = l.rows[:n]
	}
}

func (l *Layout) Row(i int) (Row, bool) {
	if i < 0 || i >= len(l.rows) {
		return Row{}, false
	}
	return l.rows[i], true
}

func (l *Layout) Len() int { return len(l.rows) }

// Total is the content height.
func (l *Layout) Total() int {
	if len(l.rows) == 0 {
		return 0
	}
	return l.rows[len(l.rows)-1].Bottom()
}

// At returns the index of the row covering line.
func (l *Layout) At(line int) (int, bool) {
	i := sort.Search(len(l.rows), func(i int) bool { return l.rows[i].Bottom() > line })
	if i >= len(l.rows) || line < l.rows[i].Top {
		return 0, false
	}
	return i, true
}

// Viewport is the scrollable window over the layout.
type Viewport struct {
	Offset int
	Height int
}

// Contains reports whether r is fully visible.
func (v Viewport) Contains(r Row) bool {
	return r.Top >= v.Offset && r.Bottom() <= v.Offset+v.Height
}

// Reveal scrolls the minimum distance that makes r fully visible. A row
// taller than the viewport is aligned to the top. It reports whether the
// offset changed.
func (v *Viewport) Reveal(r Row) bool {
	if v.Height <= 0 || v.Contains(r) {
		return false
	}
	before := v.Offset
	switch {
	case r.Top < v.Offset || r.Height >= v.Height:
		v.Offset = r.Top
	default:
		v.Offset = r.Bottom() - v.Height
	}
	return v.Offset != before
}

// Clamp keeps the offset inside [0, total-height].
func (v *Viewport) Clamp(total int) {
	maxOffset := total - v.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.Offset > maxOffset {
		v.Offset = maxOffset
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
}
