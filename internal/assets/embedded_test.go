package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{name: "loads document style", styleName: "document", wantContain: "font-family"},
		{name: "loads message style", styleName: "message", wantContain: ".mail-header"},
		{name: "returns ErrStyleNotFound for nonexistent", styleName: "nonexistent-style-xyz", wantErr: ErrStyleNotFound},
		{name: "returns ErrInvalidAssetName for empty name", styleName: "", wantErr: ErrInvalidAssetName},
		{name: "returns ErrInvalidAssetName for path traversal", styleName: "../secret", wantErr: ErrInvalidAssetName},
		{name: "returns ErrInvalidAssetName for name with dot", styleName: "style.name", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) content should contain %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name         string
		templateName string
		wantErr      error
		wantContain  string
	}{
		{name: "loads message template", templateName: "message", wantContain: "mail-header"},
		{name: "returns ErrTemplateNotFound for nonexistent", templateName: "nonexistent-template-xyz", wantErr: ErrTemplateNotFound},
		{name: "returns ErrInvalidAssetName for path traversal", templateName: "../secret", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadTemplate(tt.templateName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadTemplate(%q) error = %v, want %v", tt.templateName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadTemplate(%q) unexpected error: %v", tt.templateName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadTemplate(%q) content should contain %q", tt.templateName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_ImplementsAssetLoader(t *testing.T) {
	t.Parallel()

	var _ AssetLoader = (*EmbeddedLoader)(nil)
}

func TestEmbeddedLoader_RejectsNamesOutsideAssetDirs(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"document style", "document", true},
		{"hyphenated", "print-a4", true},
		{"underscored", "print_a4", true},
		{"empty", "", false},
		{"upper case", "Document", false},
		{"leading hyphen", "-document", false},
		{"forward slash", "styles/document", false},
		{"backslash", `styles\document`, false},
		{"parent traversal", "../message", false},
		{"extension given", "message.css", false},
		{"hidden file", ".message", false},
		{"space", "mail header", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, styleErr := loader.LoadStyle(tt.input)
			_, tmplErr := loader.LoadTemplate(tt.input)
			for _, err := range []error{styleErr, tmplErr} {
				if got := !errors.Is(err, ErrInvalidAssetName); got != tt.valid {
					t.Errorf("name %q accepted = %v, want %v (err %v)", tt.input, got, tt.valid, err)
				}
			}
		})
	}
}
