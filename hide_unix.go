//go:build !windows

package doc2pdf

// hideFile is a no-op outside Windows.
func hideFile(string) error { return nil }
