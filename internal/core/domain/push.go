package domain

import (
	"path"
	"sort"
	"strings"
)

// PushEvent is a repository push notification.
type PushEvent struct {
	// Owner is the repository owner login.
	Owner string

	// Repo is the repository name.
	Repo string

	// Branch is the pushed branch name.
	Branch string

	// Commits are the commits contained in the push.
	Commits []PushCommit
}

// PushCommit lists the paths one commit touched.
type PushCommit struct {
	// Added are paths created by the commit.
	Added []string

	// Modified are paths changed by the commit.
	Modified []string

	// Removed are paths deleted by the commit. Deletions are never
	// propagated to the memory backend.
	Removed []string
}

// PushFile is one fetched file from a push, ready for forwarding.
type PushFile struct {
	// Path is the repository-relative file path.
	Path string

	// Content is the file's raw text content.
	Content string
}

// ChangedPaths returns the deduplicated union of added and modified paths
// across all commits, in sorted order. A path touched by several commits in
// one push appears once. Removed paths are ignored.
func (e *PushEvent) ChangedPaths() []string {
	seen := make(map[string]struct{})
	for _, c := range e.Commits {
		for _, p := range c.Added {
			seen[p] = struct{}{}
		}
		for _, p := range c.Modified {
			seen[p] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// skipExtensions lists filename extensions that are never ingested:
// images, lockfiles, environment files, and config formats that add noise
// rather than context.
var skipExtensions = map[string]struct{}{
	".png":       {},
	".jpg":       {},
	".jpeg":      {},
	".gif":       {},
	".bmp":       {},
	".tiff":      {},
	".ico":       {},
	".webp":      {},
	".yaml":      {},
	".yml":       {},
	".lock":      {},
	".env":       {},
	".gitignore": {},
}

// skipDirectories lists path segments whose contents are never ingested.
var skipDirectories = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"__pycache__":  {},
	".venv":        {},
	"venv":         {},
	"dist":         {},
	"build":        {},
	".next":        {},
	"vendor":       {},
	".idea":        {},
	".vscode":      {},
}

// ShouldIngestPath reports whether a pushed file path passes the skip-list
// filters. The filename's extension is checked against the extension skip
// list, and every directory segment (excluding the filename itself) against
// the directory skip list.
func ShouldIngestPath(p string) bool {
	// path.Ext treats dotfiles like ".env" as all-extension, which is
	// exactly what the skip list wants.
	if _, skip := skipExtensions[strings.ToLower(path.Ext(path.Base(p)))]; skip {
		return false
	}

	dir := path.Dir(p)
	if dir == "." {
		return true
	}
	for _, seg := range strings.Split(dir, "/") {
		if _, skip := skipDirectories[seg]; skip {
			return false
		}
	}
	return true
}
