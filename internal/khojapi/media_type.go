package khojapi

import "path/filepath"

// mediaTypes maps file extensions to the media type the server expects.
// Everything not listed here, including source code and config files, is
// sent as plain text.
var mediaTypes = map[string]string{
	".org":      "text/org",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".doc":      "application/msword",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var binaryTypes = map[string]bool{
	"application/pdf":     true,
	"application/msword":  true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// MediaType resolves the media type for a file path by its extension.
func MediaType(path string) string {
	if t, ok := mediaTypes[filepath.Ext(path)]; ok {
		return t
	}
	return "text/plain"
}

// IsBinary reports whether a media type is transmitted as raw bytes rather
// than text content.
func IsBinary(mediaType string) bool {
	return binaryTypes[mediaType]
}
