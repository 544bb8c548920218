package pagesfile

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"statusmirror/internal/domain"
)

// Loader reads the generated pages configuration file. The file is read once
// at process start; a load or validation failure is fatal by design, the
// process must not come up without a valid page set.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, merges and validates the pages file into the immutable base
// configuration. A sibling `<name>.local.<ext>` file, when present, overrides
// the generated one field by field.
func (l *Loader) Load() (*domain.BaseConfig, error) {
	schema, err := decodeFile(l.path)
	if err != nil {
		return nil, err
	}

	localPath := localOverridePath(l.path)
	if _, statErr := os.Stat(localPath); statErr == nil {
		override, err := decodeFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("local override %s: %w", localPath, err)
		}
		if err := mergo.Merge(schema, *override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge local override: %w", err)
		}
	}

	return validate(schema)
}

func decodeFile(path string) (*fileSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pages file: %w", err)
	}

	var schema fileSchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("failed to parse pages yaml: %w", err)
		}
	case ".json", ".json5":
		if err := json5.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("failed to parse pages json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported pages file extension: %s", path)
	}

	return &schema, nil
}

func localOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func validate(schema *fileSchema) (*domain.BaseConfig, error) {
	baseURL := strings.TrimRight(schema.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("pages file: baseUrl is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("pages file: baseUrl %q is not an absolute http(s) URL", schema.BaseURL)
	}

	if len(schema.Pages) == 0 {
		return nil, fmt.Errorf("pages file: at least one page is required")
	}

	seen := make(map[string]bool, len(schema.Pages))
	pages := make([]domain.PageConfig, 0, len(schema.Pages))
	for i, p := range schema.Pages {
		if p.ID == "" {
			return nil, fmt.Errorf("pages file: page %d has an empty id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("pages file: duplicate page id %q", p.ID)
		}
		seen[p.ID] = true

		page := domain.PageConfig{ID: p.ID, Name: p.Name}
		if p.SiteMeta != nil {
			page.SiteMeta = &domain.SiteMeta{
				Title:       p.SiteMeta.Title,
				Description: p.SiteMeta.Description,
				Icon:        p.SiteMeta.Icon,
			}
		}
		pages = append(pages, page)
	}

	defaultID := schema.DefaultPageID
	if defaultID == "" {
		defaultID = pages[0].ID
	} else if !seen[defaultID] {
		return nil, fmt.Errorf("pages file: defaultPageId %q does not match any page", defaultID)
	}

	return &domain.BaseConfig{
		BaseURL:       baseURL,
		DefaultPageID: defaultID,
		Pages:         pages,
		Features: domain.FeatureFlags{
			ShowIncident:    schema.Features.ShowIncident,
			ShowMaintenance: schema.Features.ShowMaintenance,
			NavbarSearch:    schema.Features.NavbarSearch,
		},
	}, nil
}
