package metric

import "strings"

// MonthRange is an inclusive [From, To] filter on "YYYY-MM" months.
// An empty bound is unbounded on that side.
type MonthRange struct {
	From string `json:"from_month"`
	To   string `json:"to_month"`
}

// Normalize trims both bounds
func (r MonthRange) Normalize() MonthRange {
	return MonthRange{From: strings.TrimSpace(r.From), To: strings.TrimSpace(r.To)}
}

func (r MonthRange) IsUnbounded() bool {
	n := r.Normalize()
	return n.From == "" && n.To == ""
}

// Contains reports whether month falls inside the range. Comparison is
// plain string comparison, valid because months are zero-padded.
func (r MonthRange) Contains(month string) bool {
	month = strings.TrimSpace(month)
	if month == "" {
		return false
	}
	n := r.Normalize()
	if n.From != "" && month < n.From {
		return false
	}
	if n.To != "" && month > n.To {
		return false
	}
	return true
}
