package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testBase() *BaseConfig {
	return &BaseConfig{
		BaseURL:       "https://status.example.com",
		DefaultPageID: "main",
		Pages: []PageConfig{
			{ID: "main", Name: "Main"},
			{ID: "eu", Name: "Europe", SiteMeta: &SiteMeta{Title: "EU Status"}},
		},
		Features: FeatureFlags{ShowIncident: true, ShowMaintenance: true},
	}
}

func testSite() *SiteConfig {
	return &SiteConfig{
		Slug:        "main",
		Title:       "Upstream Title",
		Description: "Upstream description",
		Icon:        "/upstream.png",
		Theme:       "dark",
		Published:   true,
	}
}

func TestResolvePage(t *testing.T) {
	base := testBase()

	tests := []struct {
		name   string
		pageID string
		wantID string
	}{
		{name: "empty id resolves to default", pageID: "", wantID: "main"},
		{name: "known id", pageID: "eu", wantID: "eu"},
		{name: "unknown id falls back to first page", pageID: "nope", wantID: "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.ResolvePage(tt.pageID); got.ID != tt.wantID {
				t.Errorf("ResolvePage(%q).ID = %q, want %q", tt.pageID, got.ID, tt.wantID)
			}
		})
	}
}

func TestAssembleConfig(t *testing.T) {
	base := testBase()
	cfg := AssembleConfig(base, "main", testSite())

	if cfg.BaseURL != "https://status.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.CurrentPageID != "main" {
		t.Errorf("CurrentPageID = %q", cfg.CurrentPageID)
	}
	if cfg.HTMLEndpoint != "https://status.example.com/status/main" {
		t.Errorf("HTMLEndpoint = %q", cfg.HTMLEndpoint)
	}
	if cfg.APIEndpoint != "https://status.example.com/api/status-page/heartbeat/main" {
		t.Errorf("APIEndpoint = %q", cfg.APIEndpoint)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.Theme)
	}
	wantMeta := SiteMeta{Title: "Upstream Title", Description: "Upstream description", Icon: "/upstream.png"}
	if diff := cmp.Diff(wantMeta, cfg.SiteMeta); diff != "" {
		t.Errorf("SiteMeta mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Features.ShowIncident || !cfg.Features.ShowMaintenance {
		t.Errorf("Features = %+v, want base features carried over", cfg.Features)
	}
}

func TestAssembleConfigPageMetaOverridesUpstream(t *testing.T) {
	cfg := AssembleConfig(testBase(), "eu", testSite())

	if cfg.SiteMeta.Title != "EU Status" {
		t.Errorf("Title = %q, want page override to win", cfg.SiteMeta.Title)
	}
	// Fields the page does not override keep the upstream values.
	if cfg.SiteMeta.Description != "Upstream description" {
		t.Errorf("Description = %q", cfg.SiteMeta.Description)
	}
	if cfg.SiteMeta.Icon != "/upstream.png" {
		t.Errorf("Icon = %q", cfg.SiteMeta.Icon)
	}
}

func TestAssembleConfigUnknownPageKeepsRequestedID(t *testing.T) {
	cfg := AssembleConfig(testBase(), "ghost", testSite())

	// The endpoints point at the fallback page, but the requested id is still
	// echoed back so the client can tell what it asked for.
	if cfg.CurrentPageID != "ghost" {
		t.Errorf("CurrentPageID = %q, want ghost", cfg.CurrentPageID)
	}
	if cfg.HTMLEndpoint != "https://status.example.com/status/main" {
		t.Errorf("HTMLEndpoint = %q", cfg.HTMLEndpoint)
	}
}

func TestAssembleConfigPlaceholder(t *testing.T) {
	cfg := AssembleConfig(testBase(), "", nil)

	if cfg.Theme != "system" {
		t.Errorf("Theme = %q, want system", cfg.Theme)
	}
	if cfg.SiteMeta.Title != "" || cfg.SiteMeta.Description != "" {
		t.Errorf("SiteMeta = %+v, want empty placeholder", cfg.SiteMeta)
	}
	if cfg.SiteMeta.Icon != DefaultIcon {
		t.Errorf("Icon = %q, want %q", cfg.SiteMeta.Icon, DefaultIcon)
	}
	if cfg.Features != (FeatureFlags{}) {
		t.Errorf("Features = %+v, want all off", cfg.Features)
	}
	if cfg.CurrentPageID != "main" {
		t.Errorf("CurrentPageID = %q, want default page", cfg.CurrentPageID)
	}
}

func TestAssembleConfigReturnsFreshCopies(t *testing.T) {
	base := testBase()
	a := AssembleConfig(base, "main", testSite())
	b := AssembleConfig(base, "main", testSite())

	a.Pages[0].Name = "mutated"
	if b.Pages[0].Name == "mutated" || base.Pages[0].Name == "mutated" {
		t.Error("assembled configs must not share the pages slice")
	}
}
