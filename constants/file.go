package constants

import "strings"

// AllowedExtensions holds the allowed file extensions for receipt ingestion.
// Only PDFs carry the vendor text layouts the extractors understand.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
