package schedule

// Conflicts is the result of checking a milestone sequence against the
// ordering and go-live rules. Indices refer to the checked slice.
type Conflicts struct {
	red []bool

	// OutOfOrder lists milestones starting before an earlier milestone ends.
	OutOfOrder []int
	// PastGoLive lists non-Go-Live milestones starting after the go-live date.
	PastGoLive []int
	// GoLive is true when PastGoLive is non-empty; the Go Live marker is then red too.
	GoLive bool
}

// CheckConflicts applies both rules to list.
//
// Order rule: milestone i (i > 0) is red when any milestone before it has an
// effective end after i's start. Array position decides precedence, not dates.
//
// Go-live rule: when goLive is set, every non-Go-Live milestone starting after
// it is red, and so is the Go Live milestone itself.
func CheckConflicts(list []Milestone, goLive string) Conflicts {
	c := Conflicts{red: make([]bool, len(list))}

	maxEnd := ""
	for i, m := range list {
		start := normalize(m.StartDate)
		if i > 0 && maxEnd > start {
			c.red[i] = true
			c.OutOfOrder = append(c.OutOfOrder, i)
		}
		if end := normalize(m.End()); end > maxEnd {
			maxEnd = end
		}
	}

	if goLive == "" {
		return c
	}
	goLive = normalize(goLive)
	for i, m := range list {
		if !m.IsGoLive() && normalize(m.StartDate) > goLive {
			c.red[i] = true
			c.PastGoLive = append(c.PastGoLive, i)
		}
	}
	if len(c.PastGoLive) > 0 {
		c.GoLive = true
		for i, m := range list {
			if m.IsGoLive() {
				c.red[i] = true
			}
		}
	}
	return c
}

// IsRed reports whether milestone i is flagged by either rule.
func (c Conflicts) IsRed(i int) bool {
	return i >= 0 && i < len(c.red) && c.red[i]
}

// Any reports whether any milestone is flagged.
func (c Conflicts) Any() bool {
	for _, r := range c.red {
		if r {
			return true
		}
	}
	return false
}

// Indices returns every flagged index in ascending order.
func (c Conflicts) Indices() []int {
	out := []int{}
	for i, r := range c.red {
		if r {
			out = append(out, i)
		}
	}
	return out
}

// introducedOver reports whether c flags any index that prev did not.
func (c Conflicts) introducedOver(prev Conflicts) bool {
	for i, r := range c.red {
		if r && !prev.IsRed(i) {
			return true
		}
	}
	return false
}
