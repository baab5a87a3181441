package doc2pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/richardlehane/mscfb"
)

// cfbMagic starts every compound file (legacy Office, .msg, and
// encrypted OOXML packages).
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var ooxmlExtensions = []string{".docx", ".xlsx", ".xlsm", ".pptx"}

// checkEncryptedOOXML returns ErrPasswordProtected when path is an OOXML
// document wrapped in an encrypted compound file. Office stores password
// protected .docx/.xlsx/.pptx that way instead of as a zip package.
func checkEncryptedOOXML(path string) error {
	if !slices.Contains(ooxmlExtensions, Extension(path)) {
		return nil
	}
	f, err := os.Open(path) // #nosec G304 -- file being converted
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, len(cfbMagic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, cfbMagic) {
		return nil
	}
	doc, err := mscfb.New(f)
	if err != nil {
		return nil
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "EncryptionInfo" || entry.Name == "EncryptedPackage" {
			return fmt.Errorf("%w: %s", ErrPasswordProtected, path)
		}
	}
	return nil
}
