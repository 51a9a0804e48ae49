package services

import (
	"fmt"
	"strings"

	"github.com/harborist/contextd/internal/core/domain"
)

// composeArtifact builds the upload body: a provenance header naming the
// source, title, modification time, and access link, followed by the raw
// content. The header lets the assistant attribute answers to a document.
func composeArtifact(source string, meta *domain.DocumentMetadata, content string) string {
	link := meta.AccessLink
	if link == "" {
		link = "N/A"
	}
	return fmt.Sprintf("Document: %s\nLast Modified: %s\nSource: %s\nLink: %s\n\n%s\n\n%s",
		meta.Name, meta.ModifiedTime, source, link, strings.Repeat("=", 60), content)
}
