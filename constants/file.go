package constants

import "strings"

// Document formats accepted by the checker.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the default allowed file extensions for contract documents.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"tif":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns PDF or IMAGE for a known extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "tif", "tiff":
		return IMAGE
	default:
		return ""
	}
}

// SniffFormat looks at the leading bytes of a document.
func SniffFormat(doc []byte) string {
	switch {
	case len(doc) >= 5 && string(doc[:5]) == "%PDF-":
		return PDF
	case len(doc) >= 8 && string(doc[:8]) == "\x89PNG\r\n\x1a\n":
		return IMAGE
	case len(doc) >= 3 && doc[0] == 0xFF && doc[1] == 0xD8 && doc[2] == 0xFF:
		return IMAGE
	case len(doc) >= 4 && (string(doc[:4]) == "II*\x00" || string(doc[:4]) == "MM\x00*"):
		return IMAGE
	default:
		return ""
	}
}
