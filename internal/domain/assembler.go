package domain

import "fmt"

// DefaultIcon is used when neither the page entry nor the upstream config
// provides one, and in the degraded placeholder config.
const DefaultIcon = "/icon.svg"

// ResolvePage looks up pageID in the base configuration. An empty id resolves
// to the default page; an unknown id falls back to the first configured page
// so a request never fails here (exposing unknown ids as not-found is the
// route boundary's call, not this one's).
func (b *BaseConfig) ResolvePage(pageID string) PageConfig {
	if pageID == "" {
		pageID = b.DefaultPageID
	}
	for _, p := range b.Pages {
		if p.ID == pageID {
			return p
		}
	}
	return b.Pages[0]
}

// AssembleConfig merges the immutable base configuration with the requested
// page id and the validated upstream site config into the outward config
// contract. Every call returns a fresh, independent value; concurrent callers
// never share state through it.
//
// site may be nil, which produces the minimal placeholder variant used when
// the upstream payload failed validation: empty site meta, default icon,
// theme "system", feature flags all off.
func AssembleConfig(base *BaseConfig, pageID string, site *SiteConfig) Config {
	page := base.ResolvePage(pageID)

	currentID := pageID
	if currentID == "" {
		currentID = base.DefaultPageID
	}

	cfg := Config{
		BaseURL:       base.BaseURL,
		DefaultPageID: base.DefaultPageID,
		Pages:         append([]PageConfig(nil), base.Pages...),
		CurrentPageID: currentID,
		HTMLEndpoint:  fmt.Sprintf("%s/status/%s", base.BaseURL, page.ID),
		APIEndpoint:   fmt.Sprintf("%s/api/status-page/heartbeat/%s", base.BaseURL, page.ID),
		Theme:         "system",
	}

	if site != nil {
		cfg.SiteMeta = SiteMeta{
			Title:       site.Title,
			Description: site.Description,
			Icon:        site.Icon,
		}
		cfg.Theme = site.Theme
		cfg.Features = base.Features
	}

	// Per-page metadata always wins over what the upstream page says about
	// itself.
	if page.SiteMeta != nil {
		if page.SiteMeta.Title != "" {
			cfg.SiteMeta.Title = page.SiteMeta.Title
		}
		if page.SiteMeta.Description != "" {
			cfg.SiteMeta.Description = page.SiteMeta.Description
		}
		if page.SiteMeta.Icon != "" {
			cfg.SiteMeta.Icon = page.SiteMeta.Icon
		}
	}

	if cfg.SiteMeta.Icon == "" {
		cfg.SiteMeta.Icon = DefaultIcon
	}

	return cfg
}
