package cache

// Keyer generates cache keys for each kind of entry.
type Keyer interface {
	// RecordsKey is the key for the parsed records of a source.
	RecordsKey(source string) string

	// LayoutKey is the key for a layout computed from inputs with the given
	// fingerprint.
	LayoutKey(fingerprint string) string

	// ArtifactKey is the key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// ProfileKey is the key for the validation outcome of a profile URL.
	ProfileKey(url string) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Highlight   string  `json:"highlight,omitempty"`
	Theme       string  `json:"theme,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	View        string  `json:"view,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RecordsKey hashes the source location so URLs with secrets never appear
// in key names.
func (DefaultKeyer) RecordsKey(source string) string {
	return hashKey("records", source)
}

// LayoutKey uses the fingerprint directly.
func (DefaultKeyer) LayoutKey(fingerprint string) string {
	return "layout:" + fingerprint
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// ProfileKey hashes the profile URL.
func (DefaultKeyer) ProfileKey(url string) string {
	return hashKey("profile", url)
}

var _ Keyer = DefaultKeyer{}
