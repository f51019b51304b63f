package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperengineering/slate/internal/schedule"
)

func TestMilestoneView_FlattensMilestone(t *testing.T) {
	v := MilestoneView{
		Milestone: schedule.Milestone{
			ID:        "01JTEST000000000000000000",
			Label:     "Production",
			StartDate: "2026-01-10",
			EndDate:   "2026-01-20",
		},
		Index: 1,
		Color: "#ff0000",
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"label":"Production"`, `"start_date":"2026-01-10"`, `"index":1`, `"color":"#ff0000"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, `"Milestone"`) {
		t.Errorf("embedded struct not flattened: %s", s)
	}
}

func TestProjectUpdate_DistinguishesClearFromAbsent(t *testing.T) {
	var absent, cleared ProjectUpdate
	if err := json.Unmarshal([]byte(`{"name":"Spring"}`), &absent); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`{"go_live_date":""}`), &cleared); err != nil {
		t.Fatal(err)
	}

	if absent.GoLiveDate != nil {
		t.Errorf("absent go_live_date decoded as %q", *absent.GoLiveDate)
	}
	if cleared.GoLiveDate == nil || *cleared.GoLiveDate != "" {
		t.Error("explicit empty go_live_date not preserved")
	}
}

func TestCalendarCell_PaddingOmitsDetail(t *testing.T) {
	data, err := json.Marshal(CalendarCell{Fill: "none"})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"day":0,"fill":"none"}` {
		t.Errorf("padding cell = %s", got)
	}
}

func TestMilestoneViews(t *testing.T) {
	list := []schedule.Milestone{
		{Label: "Kickoff", StartDate: "2026-01-05"},
		{Label: "Production", StartDate: "2026-01-10", EndDate: "2026-01-20"},
		{Label: schedule.LabelGoLive, StartDate: "2026-01-08"},
	}
	views := MilestoneViews(list, schedule.CheckConflicts(list, ""))

	if len(views) != 3 {
		t.Fatalf("len = %d", len(views))
	}
	if views[1].Index != 1 || views[1].WorkingDays != 7 {
		t.Errorf("Production view = %+v", views[1])
	}
	if !views[2].Red || views[0].Red || views[1].Red {
		t.Errorf("red flags = %v %v %v, want only Go Live", views[0].Red, views[1].Red, views[2].Red)
	}
	if views[0].Color == views[1].Color || !strings.HasPrefix(views[0].Color, "#") {
		t.Errorf("colors = %s %s", views[0].Color, views[1].Color)
	}
	if !strings.HasPrefix(views[0].HSL, "hsl(") {
		t.Errorf("HSL = %s", views[0].HSL)
	}
}
