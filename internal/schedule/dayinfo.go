package schedule

// Role describes how a day relates to the milestone that owns it.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
	RoleSpan  Role = "span"
	RoleBoth  Role = "both"
)

// DayInfo names the milestone owning a day and the day's role within it.
type DayInfo struct {
	Idx  int  `json:"idx"`
	Role Role `json:"role"`
}

// Overlap names two milestones sharing one day, in scan order.
type Overlap struct {
	LeftIdx  int `json:"left_idx"`
	RightIdx int `json:"right_idx"`
}

// GetDayInfo classifies day against list.
//
// A start or single-day match returns immediately. End and span matches are
// only remembered as a fallback, so on a boundary where one milestone ends and
// the next begins, the later milestone's start wins.
func GetDayInfo(day string, list []Milestone) (DayInfo, bool) {
	var fallback DayInfo
	found := false

	for i, m := range list {
		start := normalize(m.StartDate)
		end := normalize(m.End())

		switch {
		case day == start && day == end:
			return DayInfo{Idx: i, Role: RoleBoth}, true
		case day == start:
			return DayInfo{Idx: i, Role: RoleStart}, true
		case day == end:
			if !found {
				fallback, found = DayInfo{Idx: i, Role: RoleEnd}, true
			}
		case day > start && day < end:
			if !found {
				fallback, found = DayInfo{Idx: i, Role: RoleSpan}, true
			}
		}
	}
	return fallback, found
}

// GetOverlapInfo returns the first two milestones whose inclusive range
// contains day, or false when fewer than two do.
func GetOverlapInfo(day string, list []Milestone) (Overlap, bool) {
	hits := make([]int, 0, 2)
	for i, m := range list {
		if day >= normalize(m.StartDate) && day <= normalize(m.End()) {
			hits = append(hits, i)
			if len(hits) == 2 {
				return Overlap{LeftIdx: hits[0], RightIdx: hits[1]}, true
			}
		}
	}
	return Overlap{}, false
}
