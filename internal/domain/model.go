package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PreloadData is the application state one upstream status page embeds in its
// HTML for client-side hydration. It is rebuilt on every scrape and never
// persisted; MonitorGroups comes from the page itself while Data is joined in
// from the heartbeat API.
type PreloadData struct {
	Config          SiteConfig     `json:"config"`
	Incident        *Incident      `json:"incident,omitempty"`
	MaintenanceList []Maintenance  `json:"maintenanceList"`
	MonitorGroups   []MonitorGroup `json:"monitorGroups"`
	Data            MonitoringData `json:"data"`
}

// SiteConfig is the upstream page's own configuration, validated out of the
// preload payload. All string fields are required upstream; Theme is
// normalized to one of "light", "dark" or "system".
type SiteConfig struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	Theme         string `json:"theme"`
	Published     bool   `json:"published"`
	ShowTags      bool   `json:"showTags"`
	ShowPoweredBy bool   `json:"showPoweredBy"`
}

// Incident is an optional pinned announcement on the upstream page.
type Incident struct {
	ID              int64  `json:"id"`
	Style           string `json:"style"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	Pin             bool   `json:"pin"`
	CreatedDate     string `json:"createdDate"`
	LastUpdatedDate string `json:"lastUpdatedDate,omitempty"`
}

// MonitorGroup is an ordered group of monitors as laid out upstream.
type MonitorGroup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Weight      int       `json:"weight,omitempty"`
	MonitorList []Monitor `json:"monitorList"`
}

type Monitor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Tags []Tag  `json:"tags,omitempty"`
}

type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Color string `json:"color,omitempty"`
}

// MonitoringData carries the heartbeat and uptime series from the upstream
// API. UptimeList is keyed by the synthesized "<monitorID>_<periodHours>"
// form; use UptimeKey/ParseUptimeKey rather than building keys by hand.
type MonitoringData struct {
	HeartbeatList map[int64][]Heartbeat `json:"heartbeatList"`
	UptimeList    map[string]float64    `json:"uptimeList"`
}

type Heartbeat struct {
	Status   int     `json:"status"`
	Time     string  `json:"time"`
	Ping     float64 `json:"ping"`
	Duration float64 `json:"duration"`
}

// UptimeKey builds the composite uptime-series key for a monitor and period.
func UptimeKey(monitorID int64, periodHours int) string {
	return fmt.Sprintf("%d_%d", monitorID, periodHours)
}

// ParseUptimeKey splits a composite uptime key back into its parts.
func ParseUptimeKey(key string) (monitorID int64, periodHours int, err error) {
	i := strings.IndexByte(key, '_')
	if i <= 0 || i == len(key)-1 {
		return 0, 0, fmt.Errorf("malformed uptime key %q", key)
	}
	monitorID, err = strconv.ParseInt(key[:i], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed uptime key %q: %w", key, err)
	}
	periodHours, err = strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed uptime key %q: %w", key, err)
	}
	return monitorID, periodHours, nil
}

// BaseConfig is the process-wide page configuration, loaded once at startup
// from the generated pages file and never mutated afterwards. Every component
// that needs it receives it explicitly.
type BaseConfig struct {
	BaseURL       string       `json:"baseUrl"`
	DefaultPageID string       `json:"defaultPageId"`
	Pages         []PageConfig `json:"pages"`
	Features      FeatureFlags `json:"features"`
}

// PageConfig describes one mirrored upstream status page.
type PageConfig struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	SiteMeta *SiteMeta `json:"siteMeta,omitempty"`
}

type SiteMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type FeatureFlags struct {
	ShowIncident    bool `json:"showIncident"`
	ShowMaintenance bool `json:"showMaintenance"`
	NavbarSearch    bool `json:"navbarSearch"`
}

// Config is the outward-facing configuration contract, assembled fresh for
// every page-scoped request from the immutable BaseConfig plus the upstream
// site config of the resolved page.
type Config struct {
	BaseURL       string       `json:"baseUrl"`
	DefaultPageID string       `json:"defaultPageId"`
	Pages         []PageConfig `json:"pages"`
	CurrentPageID string       `json:"currentPageId"`
	HTMLEndpoint  string       `json:"htmlEndpoint"`
	APIEndpoint   string       `json:"apiEndpoint"`
	SiteMeta      SiteMeta     `json:"siteMeta"`
	Theme         string       `json:"theme"`
	Features      FeatureFlags `json:"features"`
}

// GlobalConfig is the /api/config response body. Success is false whenever a
// degradation happened on the way here (placeholder config, dropped
// maintenance data).
type GlobalConfig struct {
	Success         bool          `json:"success"`
	Config          Config        `json:"config"`
	Incident        *Incident     `json:"incident,omitempty"`
	MaintenanceList []Maintenance `json:"maintenanceList"`
}

// MonitorData is the /api/monitor response body.
type MonitorData struct {
	Success       bool           `json:"success"`
	MonitorGroups []MonitorGroup `json:"monitorGroups"`
	Data          MonitoringData `json:"data"`
}
