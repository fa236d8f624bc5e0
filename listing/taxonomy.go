package listing

// TaxEntry maps a numeric category or content-type id to its URL path segment
// and display name.
type TaxEntry struct {
	ID   uint8  `mapstructure:"id"`
	Path string `mapstructure:"path"`
	Name string `mapstructure:"name"`
}

// Taxonomy is a small fixed lookup table loaded from configuration at startup
// and never mutated afterwards, so it is safe to share across requests without
// synchronization. Tables stay under a couple dozen entries; linear scans are
// fine.
type Taxonomy []TaxEntry

// PathName resolves an id to its path segment and display name.
func (t Taxonomy) PathName(id uint8) (path, name string, ok bool) {
	for _, e := range t {
		if e.ID == id {
			return e.Path, e.Name, true
		}
	}
	return "", "", false
}

// ID resolves a URL path segment back to its id.
func (t Taxonomy) ID(path string) (uint8, bool) {
	for _, e := range t {
		if e.Path == path {
			return e.ID, true
		}
	}
	return 0, false
}

// Name resolves a URL path segment to its display name.
func (t Taxonomy) Name(path string) (string, bool) {
	for _, e := range t {
		if e.Path == path {
			return e.Name, true
		}
	}
	return "", false
}
