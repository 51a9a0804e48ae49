package domain

import "strings"

// drive URL patterns that precede the file id.
var driveIDPatterns = []string{"/file/d/", "/d/", "id="}

// ExtractFileID pulls the file id out of a Drive document URL.
// Handles the common forms:
//
//	https://docs.google.com/document/d/FILE_ID/edit
//	https://drive.google.com/file/d/FILE_ID/view
//	https://drive.google.com/open?id=FILE_ID
//
// Returns "" when no id can be found. Inputs that are already bare ids
// should be passed through by the caller without extraction.
func ExtractFileID(url string) string {
	for _, pattern := range driveIDPatterns {
		idx := strings.Index(url, pattern)
		if idx < 0 {
			continue
		}
		rest := url[idx+len(pattern):]
		if end := strings.IndexAny(rest, "/?#&"); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.Trim(rest, "/")
		if rest != "" {
			return rest
		}
	}
	return ""
}
