package github

import (
	"context"
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/harborist/contextd/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.RepoFileFetcher = (*Fetcher)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// MaxFileSize caps fetched file content (1MB). Larger pushed files are
// rejected rather than truncated.
const MaxFileSize = 1024 * 1024

// Fetcher retrieves file content from repositories at a specific ref.
type Fetcher struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewFetcher creates a GitHub file fetcher. An empty token produces an
// unauthenticated client, which only reaches public repositories.
func NewFetcher(ctx context.Context, token string) *Fetcher {
	var client *gh.Client
	if token == "" {
		client = gh.NewClient(nil)
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = DefaultTimeout
		client = gh.NewClient(tc)
	}

	return &Fetcher{
		gh:          client,
		rateLimiter: NewRateLimiter(),
	}
}

// NewFetcherFromClient wraps an already-constructed go-github client.
func NewFetcherFromClient(client *gh.Client) *Fetcher {
	return &Fetcher{gh: client, rateLimiter: NewRateLimiter()}
}

// FetchFile downloads one file's content at the given ref.
func (f *Fetcher) FetchFile(ctx context.Context, owner, repo, ref, path string) (string, error) {
	if err := f.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	rc, resp, err := f.gh.Repositories.DownloadContents(ctx, owner, repo, path, opts)
	if resp != nil {
		f.rateLimiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return "", fmt.Errorf("download %s/%s:%s: %w", owner, repo, path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("file %s exceeds %d bytes", path, MaxFileSize)
	}
	return string(data), nil
}
