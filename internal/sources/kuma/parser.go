package kuma

import (
	"strconv"

	json "github.com/goccy/go-json"

	"statusmirror/internal/domain"
)

// preloadWire defers every top-level field so each one can be validated or
// degraded independently: a broken maintenance list must not take the config
// down with it.
type preloadWire struct {
	Config          json.RawMessage `json:"config"`
	Incident        json.RawMessage `json:"incident"`
	MaintenanceList json.RawMessage `json:"maintenanceList"`
	PublicGroupList json.RawMessage `json:"publicGroupList"`
}

// siteConfigWire uses pointers to tell "absent" apart from "zero value".
type siteConfigWire struct {
	Slug          *string `json:"slug"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Icon          *string `json:"icon"`
	Theme         *string `json:"theme"`
	Published     bool    `json:"published"`
	ShowTags      bool    `json:"showTags"`
	ShowPoweredBy bool    `json:"showPoweredBy"`
}

// ParsePreload parses sanitized payload text and validates its shape.
//
// A strict-parse failure here is by contract a Sanitizer defect and comes
// back as *domain.SanitizationError. A missing or malformed config is a
// *domain.ValidationError naming the field. Maintenance and monitor-group
// lists are non-critical to rendering: when absent they default to empty, and
// when present but malformed ParsePreload still returns a usable PreloadData
// (with the offending list empty) alongside a *domain.APIDataError so the
// caller can flag the degradation.
func ParsePreload(sanitized string) (*domain.PreloadData, error) {
	var wire preloadWire
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return nil, &domain.SanitizationError{Snippet: truncate(sanitized, 120), Err: err}
	}

	site, err := parseSiteConfig(wire.Config)
	if err != nil {
		return nil, err
	}

	pd := &domain.PreloadData{
		Config:          *site,
		MaintenanceList: []domain.Maintenance{},
		MonitorGroups:   []domain.MonitorGroup{},
	}

	if present(wire.Incident) {
		var incident domain.Incident
		// A broken incident is not worth failing or even flagging the page
		// over; it simply is not shown.
		if err := json.Unmarshal(wire.Incident, &incident); err == nil {
			pd.Incident = &incident
		}
	}

	var degraded error
	if present(wire.MaintenanceList) {
		var list []domain.Maintenance
		if err := json.Unmarshal(wire.MaintenanceList, &list); err != nil {
			degraded = &domain.APIDataError{Field: "maintenanceList", Reason: "is not a sequence of maintenance entries"}
		} else {
			pd.MaintenanceList = list
		}
	}

	if present(wire.PublicGroupList) {
		var groups []domain.MonitorGroup
		if err := json.Unmarshal(wire.PublicGroupList, &groups); err != nil {
			if degraded == nil {
				degraded = &domain.APIDataError{Field: "publicGroupList", Reason: "is not a sequence of monitor groups"}
			}
		} else {
			pd.MonitorGroups = groups
		}
	}

	return pd, degraded
}

func parseSiteConfig(raw json.RawMessage) (*domain.SiteConfig, error) {
	if !present(raw) {
		return nil, &domain.ValidationError{Field: "config", Reason: "is missing"}
	}

	var wire siteConfigWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &domain.ValidationError{Field: "config", Reason: "is not an object of the expected shape"}
	}

	required := []struct {
		name  string
		value *string
	}{
		{"config.slug", wire.Slug},
		{"config.title", wire.Title},
		{"config.description", wire.Description},
		{"config.icon", wire.Icon},
		{"config.theme", wire.Theme},
	}
	for _, f := range required {
		if f.value == nil {
			return nil, &domain.ValidationError{Field: f.name, Reason: "is missing or not a string"}
		}
	}

	return &domain.SiteConfig{
		Slug:          *wire.Slug,
		Title:         *wire.Title,
		Description:   *wire.Description,
		Icon:          *wire.Icon,
		Theme:         NormalizeTheme(*wire.Theme),
		Published:     wire.Published,
		ShowTags:      wire.ShowTags,
		ShowPoweredBy: wire.ShowPoweredBy,
	}, nil
}

// NormalizeTheme restricts the upstream theme to the three values the
// frontend understands; any other literal collapses to "system".
func NormalizeTheme(theme string) string {
	switch theme {
	case "light", "dark", "system":
		return theme
	default:
		return "system"
	}
}

// heartbeatWire mirrors the upstream heartbeat API body: series keyed by the
// monitor id as a decimal string, uptime ratios keyed by the synthesized
// "<monitorID>_<periodHours>" form.
type heartbeatWire struct {
	HeartbeatList map[string][]domain.Heartbeat `json:"heartbeatList"`
	UptimeList    map[string]float64            `json:"uptimeList"`
}

// ParseHeartbeat decodes the heartbeat API body into MonitoringData. Entries
// with malformed keys are dropped rather than failing the whole response;
// uptime ratios are clamped into [0,1].
func ParseHeartbeat(body []byte) (domain.MonitoringData, error) {
	data := domain.MonitoringData{
		HeartbeatList: map[int64][]domain.Heartbeat{},
		UptimeList:    map[string]float64{},
	}

	var wire heartbeatWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return data, &domain.APIDataError{Field: "heartbeat", Reason: "response is not the expected JSON shape"}
	}

	for key, beats := range wire.HeartbeatList {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		data.HeartbeatList[id] = beats
	}

	for key, ratio := range wire.UptimeList {
		if _, _, err := domain.ParseUptimeKey(key); err != nil {
			continue
		}
		if ratio < 0 {
			ratio = 0
		} else if ratio > 1 {
			ratio = 1
		}
		data.UptimeList[key] = ratio
	}

	return data, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
