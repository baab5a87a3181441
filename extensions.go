package doc2pdf

import "slices"

// Extension sets claimed by the built-in backends.
var (
	wordExtensions    = []string{".doc", ".docx", ".rtf", ".odt"}
	sheetExtensions   = []string{".xls", ".xlsx", ".xlsm", ".xlsb"}
	slideExtensions   = []string{".ppt", ".pptx"}
	odfExtensions     = []string{".ods", ".odp"}
	imageExtensions   = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".tif", ".webp"}
	webExtensions     = []string{".htm", ".html", ".md", ".markdown"}
	textExtensions    = []string{".txt", ".log", ".csv"}
	markupExtensions  = []string{".xml", ".json", ".yaml", ".yml"}
	messageExtensions = []string{".msg", ".eml"}
	archiveExtensions = []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".rar", ".7z"}
	pdfExtension      = ".pdf"
)

// Members of these extensions are converted inside containers.
var (
	archiveConvertible = []string{
		".doc", ".docx", ".rtf", ".odt",
		".xls", ".xlsx", ".xlsm", ".xlsb",
		".ppt", ".pptx",
		".txt", ".log",
		".htm", ".html", ".xml",
		".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".webp",
		".msg", ".pdf",
	}
	messageConvertible = concat(archiveConvertible, archiveExtensions)
)

// DefaultExtensions returns every extension some built-in backend claims.
func DefaultExtensions() []string {
	return concat(
		wordExtensions, sheetExtensions, slideExtensions, odfExtensions,
		imageExtensions, webExtensions, textExtensions, markupExtensions,
		messageExtensions, archiveExtensions, []string{pdfExtension},
	)
}

func concat(sets ...[]string) []string {
	var out []string
	for _, s := range sets {
		for _, e := range s {
			if !slices.Contains(out, e) {
				out = append(out, e)
			}
		}
	}
	return out
}
