package github

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harborist/contextd/internal/core/domain"
)

// pushPayload is the subset of GitHub's push webhook payload we consume.
type pushPayload struct {
	Ref        string `json:"ref"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
			Name  string `json:"name"`
		} `json:"owner"`
	} `json:"repository"`
	Commits []struct {
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
		Removed  []string `json:"removed"`
	} `json:"commits"`
}

// DecodePushEvent parses a GitHub push webhook body into a domain event.
func DecodePushEvent(body []byte) (*domain.PushEvent, error) {
	var payload pushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode push payload: %w", err)
	}

	owner := payload.Repository.Owner.Login
	if owner == "" {
		// Org webhooks populate name instead of login.
		owner = payload.Repository.Owner.Name
	}
	if owner == "" || payload.Repository.Name == "" {
		return nil, fmt.Errorf("%w: push payload missing repository", domain.ErrInvalidInput)
	}

	event := &domain.PushEvent{
		Owner:  owner,
		Repo:   payload.Repository.Name,
		Branch: strings.TrimPrefix(payload.Ref, "refs/heads/"),
	}
	for _, c := range payload.Commits {
		event.Commits = append(event.Commits, domain.PushCommit{
			Added:    c.Added,
			Modified: c.Modified,
			Removed:  c.Removed,
		})
	}
	return event, nil
}
