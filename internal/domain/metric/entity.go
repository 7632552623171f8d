package metric

import "strings"

// Kind identifies one of the four tracked attendance measures
type Kind string

const (
	KindOnTime     Kind = "on_time"
	KindCompletion Kind = "completion"
	KindLost       Kind = "lost"
	KindLeave      Kind = "leave"
)

// Kinds lists every metric in the order the dashboard renders them
var Kinds = []Kind{KindOnTime, KindCompletion, KindLost, KindLeave}

func (k Kind) IsValid() bool {
	switch k {
	case KindOnTime, KindCompletion, KindLost, KindLeave:
		return true
	}
	return false
}

// Title is the chart heading used for the metric
func (k Kind) Title() string {
	switch k {
	case KindOnTime:
		return "On Time %"
	case KindCompletion:
		return "Work Hour Completion %"
	case KindLost:
		return "Work Hour Lost"
	case KindLeave:
		return "Leave Analysis"
	}
	return string(k)
}

// Dimension is the organizational grouping records are partitioned by
type Dimension string

const (
	DimensionFunction Dimension = "function"
	DimensionCompany  Dimension = "company"
	DimensionLocation Dimension = "location"
)

var Dimensions = []Dimension{DimensionFunction, DimensionCompany, DimensionLocation}

func (d Dimension) IsValid() bool {
	switch d {
	case DimensionFunction, DimensionCompany, DimensionLocation:
		return true
	}
	return false
}

// Label is the human readable tab name, e.g. "Function"
func (d Dimension) Label() string {
	s := string(d)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseDimension accepts any casing and surrounding whitespace
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidDimension
	}
	return d, nil
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Record is one observation for a (group, month) pair.
// Month is "YYYY-MM"; lexicographic order equals chronological order.
type Record struct {
	Group   string `json:"group"`
	Month   string `json:"month"`
	Members int    `json:"members"`

	// On time
	Present   int     `json:"present"`
	Late      int     `json:"late"`
	OnTime    int     `json:"on_time"`
	OnTimePct float64 `json:"on_time_pct"`

	// Work hour completion
	ShiftHours    float64 `json:"shift_hours"`
	WorkHours     float64 `json:"work_hours"`
	Completed     int     `json:"completed"`
	CompletionPct float64 `json:"completion_pct"`

	// Work hour lost
	LostHours float64 `json:"lost_hours"`
	Lost      float64 `json:"lost"`
	LostPct   float64 `json:"lost_pct"`

	// Leave analysis
	LeaveMembers int     `json:"leave_members"`
	SL           int     `json:"sl"`
	CL           int     `json:"cl"`
	A            int     `json:"a"`
	SLPct        float64 `json:"sl_pct"`
	CLPct        float64 `json:"cl_pct"`
	APct         float64 `json:"a_pct"`

	// MonthLabel is filled by the chart cache, e.g. "Mar 25"
	MonthLabel string `json:"month_label,omitempty"`
}

// Value returns the headline value of the record for a metric
func (r Record) Value(k Kind) float64 {
	switch k {
	case KindOnTime:
		return r.OnTimePct
	case KindCompletion:
		return r.CompletionPct
	case KindLost:
		return r.HoursLost()
	case KindLeave:
		return r.APct // absent share of leave days
	}
	return 0
}

// HoursLost prefers the "lost" alias and falls back to lost_hours
func (r Record) HoursLost() float64 {
	if r.Lost != 0 {
		return r.Lost
	}
	return r.LostHours
}
