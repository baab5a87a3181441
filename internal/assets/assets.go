package assets

// AssetLoader loads named styles and templates.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// defaultLoader is the package-level embedded loader.
var defaultLoader AssetLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName for anything but a bare lower-case stem.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the default loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// MustLoadStyle is LoadStyle for names embedded at build time. It panics
// when the style is missing.
func MustLoadStyle(name string) string {
	css, err := LoadStyle(name)
	if err != nil {
		panic(err)
	}
	return css
}
