package assets

import (
	"embed"
	"fmt"
	"regexp"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// assetName is the shape of every embedded asset stem: "document",
// "message", "print-a4". No dots, so the extension is always ours.
var assetName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle returns styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return load("styles", name, ".css", ErrStyleNotFound)
}

// LoadTemplate returns templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return load("templates", name, ".html", ErrTemplateNotFound)
}

func load(dir, name, ext string, notFound error) (string, error) {
	if !assetName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	content, err := embedded.ReadFile(dir + "/" + name + ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
