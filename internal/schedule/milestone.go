// Package schedule holds the milestone scheduling core shared by every
// surface that shows a project timeline: date arithmetic, canonical ordering,
// color assignment, day classification, conflict rules, the drag/resize
// state machine and the month grid view-model.
//
// Nothing here performs I/O. The admin editor and the read-only customer
// calendar call the same functions over the same canonically sorted slice,
// which is what keeps their colors and day ownership identical.
package schedule

import (
	"sort"
	"time"
)

// Labels with fixed positions at the tail of every canonical sequence.
const (
	LabelGoLive        = "Go Live"
	LabelFinalDelivery = "Final Delivery"
)

// Milestone is a labeled date span on a project timeline.
// An empty EndDate means a single-day milestone ending on StartDate.
type Milestone struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Phase     string `json:"phase,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// End returns the effective end date.
func (m Milestone) End() string {
	if m.EndDate == "" {
		return m.StartDate
	}
	return m.EndDate
}

// IsGoLive reports whether m is the Go Live marker.
func (m Milestone) IsGoLive() bool {
	return m.Label == LabelGoLive
}

// WorkingDays returns the number of Mon-Fri days m covers, inclusive.
func (m Milestone) WorkingDays() int {
	start, err := ParseLocal(m.StartDate)
	if err != nil {
		return 0
	}
	end, err := ParseLocal(m.End())
	if err != nil {
		return 0
	}
	return CountBusinessDays(start.AddDate(0, 0, -1), end)
}

func rank(label string) int {
	switch label {
	case LabelGoLive:
		return 2
	case LabelFinalDelivery:
		return 1
	default:
		return 0
	}
}

// SortMilestones returns a canonically ordered copy of list: ordinary
// milestones by start date, then Final Delivery, then Go Live. The sort is
// stable, so equal keys keep their insertion order.
func SortMilestones(list []Milestone) []Milestone {
	out := make([]Milestone, len(list))
	copy(out, list)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Label), rank(out[j].Label)
		if ri != rj {
			return ri < rj
		}
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// PhaseGroup is a contiguous run of milestones sharing one phase.
type PhaseGroup struct {
	Phase      string      `json:"phase"`
	FirstIndex int         `json:"first_index"`
	Milestones []Milestone `json:"milestones"`
}

// GroupByPhase splits list into contiguous runs of equal Phase, preserving
// order. A phase that reappears later starts a new group. Grouping is for
// display only; index-based rules always use the flat list.
func GroupByPhase(list []Milestone) []PhaseGroup {
	var groups []PhaseGroup
	for i, m := range list {
		if n := len(groups); n > 0 && groups[n-1].Phase == m.Phase {
			groups[n-1].Milestones = append(groups[n-1].Milestones, m)
			continue
		}
		groups = append(groups, PhaseGroup{
			Phase:      m.Phase,
			FirstIndex: i,
			Milestones: []Milestone{m},
		})
	}
	return groups
}

// PhaseLookup returns a phaseForDay callback that reports the phase of the
// milestone owning each day in list.
func PhaseLookup(list []Milestone) func(day string) string {
	return func(day string) string {
		info, ok := GetDayInfo(day, list)
		if !ok {
			return ""
		}
		return list[info.Idx].Phase
	}
}

// EffectiveGoLive returns the designated go-live date when set, otherwise
// the start date of the Go Live milestone in list, otherwise "".
func EffectiveGoLive(designated string, list []Milestone) string {
	if designated != "" {
		return normalize(designated)
	}
	for _, m := range list {
		if m.IsGoLive() {
			return normalize(m.StartDate)
		}
	}
	return ""
}

// PhaseTemplate is one working phase of a timeline template.
type PhaseTemplate struct {
	Label        string `yaml:"label" json:"label"`
	Phase        string `yaml:"phase" json:"phase"`
	BusinessDays int    `yaml:"business_days" json:"business_days"`
}

// Template describes how to lay out a draft timeline.
type Template struct {
	Name   string          `yaml:"name" json:"name"`
	Phases []PhaseTemplate `yaml:"phases" json:"phases"`
	// DeliveryGap is the business-day gap between the last phase and Final Delivery.
	DeliveryGap int `yaml:"delivery_gap" json:"delivery_gap"`
	// GoLiveGap is the business-day gap between Final Delivery and Go Live.
	GoLiveGap int `yaml:"go_live_gap" json:"go_live_gap"`
}

// StandardTemplate is the default three-phase production timeline.
var StandardTemplate = Template{
	Name: "standard",
	Phases: []PhaseTemplate{
		{Label: "Pre-Production", Phase: "Pre-Production", BusinessDays: 5},
		{Label: "Production", Phase: "Production", BusinessDays: 10},
		{Label: "Post-Production", Phase: "Post-Production", BusinessDays: 10},
	},
	DeliveryGap: 2,
	GoLiveGap:   3,
}

// PlanTimeline lays out tpl starting with a kickoff on the first Tuesday on
// or after start. Each phase begins the business day after the previous one
// ends. The result is in canonical order with empty IDs.
func PlanTimeline(start time.Time, tpl Template) []Milestone {
	kickoff := NextTuesday(start)
	list := []Milestone{{Label: "Kickoff", Phase: "Kickoff", StartDate: YMD(kickoff)}}

	cursor := kickoff
	for _, p := range tpl.Phases {
		days := max(p.BusinessDays, 1)
		s := AddBusinessDays(cursor, 1)
		e := AddBusinessDays(s, days-1)
		m := Milestone{Label: p.Label, Phase: p.Phase, StartDate: YMD(s)}
		if days > 1 {
			m.EndDate = YMD(e)
		}
		list = append(list, m)
		cursor = e
	}

	delivery := AddBusinessDays(cursor, max(tpl.DeliveryGap, 1))
	goLive := AddBusinessDays(delivery, max(tpl.GoLiveGap, 1))
	list = append(list,
		Milestone{Label: LabelFinalDelivery, Phase: "Delivery", StartDate: YMD(delivery)},
		Milestone{Label: LabelGoLive, Phase: "Delivery", StartDate: YMD(goLive)},
	)
	return SortMilestones(list)
}
