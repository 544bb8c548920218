package domain

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// MaintenanceStatus is the derived lifecycle state of a maintenance window.
// It is never stored: every normalization pass recomputes it against the
// clock, so it is always consistent with "now" at fetch time.
type MaintenanceStatus string

const (
	StatusScheduled        MaintenanceStatus = "scheduled"
	StatusUnderMaintenance MaintenanceStatus = "under-maintenance"
	StatusEnded            MaintenanceStatus = "ended"
	StatusUndated          MaintenanceStatus = "undated"
)

// Maintenance is one planned maintenance entry from the upstream page.
type Maintenance struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	TimeslotList []Timeslot        `json:"timeslotList"`
	Status       MaintenanceStatus `json:"status"`
}

// Timeslot is a maintenance window. Both ends are normalized to UTC on parse.
type Timeslot struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Upstream emits timeslot timestamps in a handful of shapes depending on
// version; all are interpreted as UTC when they carry no zone.
var timeslotLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04",
}

type timeslotWire struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (t *Timeslot) UnmarshalJSON(data []byte) error {
	var w timeslotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := parseTimeslotTime(w.StartDate)
	if err != nil {
		return fmt.Errorf("startDate: %w", err)
	}
	end, err := parseTimeslotTime(w.EndDate)
	if err != nil {
		return fmt.Errorf("endDate: %w", err)
	}
	t.StartDate = start
	t.EndDate = end
	return nil
}

func (t Timeslot) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeslotWire{
		StartDate: t.StartDate.UTC().Format(time.RFC3339),
		EndDate:   t.EndDate.UTC().Format(time.RFC3339),
	})
}

func parseTimeslotTime(s string) (time.Time, error) {
	for _, layout := range timeslotLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ComputeMaintenanceStatus derives the lifecycle state of m at the given
// instant. Only the first timeslot participates; later slots never affect the
// result. With no timeslot at all the entry is "undated".
func ComputeMaintenanceStatus(m Maintenance, now time.Time) MaintenanceStatus {
	if len(m.TimeslotList) == 0 {
		return StatusUndated
	}
	slot := m.TimeslotList[0]
	switch {
	case now.Before(slot.StartDate):
		return StatusScheduled
	case now.Before(slot.EndDate):
		return StatusUnderMaintenance
	default:
		return StatusEnded
	}
}
