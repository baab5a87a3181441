package doc2pdf

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// passwordKeywords are matched case-insensitively against error text.
// English and French phrasings are both produced by Office automation.
var passwordKeywords = []string{
	"password",
	"mot de passe",
	"mdp",
	"protected",
	"protégé",
	"protege",
	"protection",
	"encrypt",
	"chiffré",
	"chiffre",
	"cannot be opened because it is password",
	"the password is incorrect",
	"requires a password",
	"un mot de passe est requis",
}

// LooksLikePasswordError reports whether text describes a document that
// could not be opened because it is password protected or encrypted.
func LooksLikePasswordError(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range passwordKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// nativePasswordError wraps err in ErrPasswordProtected when the
// converter's own message reads like a password prompt. Every form of
// paths is cut from the text first: file and folder names routinely
// contain the keywords ("Protection sociale/", "mdp.txt").
func nativePasswordError(err error, paths ...string) error {
	if err == nil || errors.Is(err, ErrPasswordProtected) {
		return err
	}
	var forms []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		forms = append(forms, p, filepath.ToSlash(p), filepath.Base(p))
		if abs, absErr := filepath.Abs(p); absErr == nil {
			forms = append(forms, abs, filepath.ToSlash(abs))
		}
	}
	// Longest first so a full path goes before its base name.
	slices.SortFunc(forms, func(a, b string) int { return len(b) - len(a) })
	text := err.Error()
	for _, f := range forms {
		text = strings.ReplaceAll(text, f, "")
	}
	if LooksLikePasswordError(text) {
		return fmt.Errorf("%w: %v", ErrPasswordProtected, err)
	}
	return err
}
