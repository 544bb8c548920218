package pagesfile

// fileSchema is the on-disk shape of the generated pages file. The generator
// emits JSON, but hand-maintained deployments use JSON5 or YAML, so every
// field carries both tag sets.
type fileSchema struct {
	BaseURL       string        `json:"baseUrl" yaml:"baseUrl"`
	DefaultPageID string        `json:"defaultPageId" yaml:"defaultPageId"`
	Pages         []pageSchema  `json:"pages" yaml:"pages"`
	Features      featureSchema `json:"features" yaml:"features"`
}

type pageSchema struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	SiteMeta *siteMetaSchema `json:"siteMeta" yaml:"siteMeta"`
}

type siteMetaSchema struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}

type featureSchema struct {
	ShowIncident    bool `json:"showIncident" yaml:"showIncident"`
	ShowMaintenance bool `json:"showMaintenance" yaml:"showMaintenance"`
	NavbarSearch    bool `json:"navbarSearch" yaml:"navbarSearch"`
}
