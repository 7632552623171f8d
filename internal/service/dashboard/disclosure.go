package dashboard

// DefaultPageSize is how many groups are revealed at once
const DefaultPageSize = 5

// Disclosure bounds how many groups are rendered at a time. It never
// affects summary statistics or exports, which use the full group index.
type Disclosure struct {
	pageSize     int
	visibleCount int
}

func NewDisclosure(pageSize int) *Disclosure {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Disclosure{pageSize: pageSize, visibleCount: pageSize}
}

// VisibleCount is the raw counter; use Visible for a slice bound by the group count
func (d *Disclosure) VisibleCount() int {
	return d.visibleCount
}

// Reset goes back to the first page
func (d *Disclosure) Reset() {
	d.visibleCount = d.pageSize
}

// LoadMore reveals one more page, capped at totalGroups
func (d *Disclosure) LoadMore(totalGroups int) {
	d.visibleCount = min(d.visibleCount+d.pageSize, totalGroups)
	if d.visibleCount < 0 {
		d.visibleCount = 0
	}
}

// ShowAll reveals every group
func (d *Disclosure) ShowAll(totalGroups int) {
	d.visibleCount = totalGroups
}

// Visible returns the first visibleCount groups, in index order
func (d *Disclosure) Visible(groups []string) []string {
	n := min(d.visibleCount, len(groups))
	if n < 0 {
		n = 0
	}
	return groups[:n]
}

// HasMore reports whether some groups are still hidden
func (d *Disclosure) HasMore(totalGroups int) bool {
	return d.visibleCount < totalGroups
}
