package github

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bravo68web/scribe/internal/config"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// TokenProvider supplies installation access tokens for API calls and
// authenticated pushes
type TokenProvider interface {
	InstallationToken(ctx context.Context) (string, error)
}

// Client is a thin wrapper over the GitHub REST API, authenticated as the
// app installation
type Client struct {
	client *resty.Client
	tokens TokenProvider
	owner  string
	repo   string
	log    *logger.Logger
}

// PullRequest is the subset of GitHub's pull request representation this
// service works with
type PullRequest struct {
	Number  int           `json:"number"`
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	State   string        `json:"state"`
	HTMLURL string        `json:"html_url"`
	Head    BranchPointer `json:"head"`
	Base    BranchPointer `json:"base"`
}

// BranchPointer identifies one side of a pull request
type BranchPointer struct {
	Ref string `json:"ref"`
}

// Issue is the subset of GitHub's issue representation exposed to editors
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
}

// NewClient creates a GitHub API client bound to the configured repository
func NewClient(cfg *config.GitHubConfig, files *config.FilesConfig, tokens TokenProvider) (*Client, error) {
	owner, repo, err := files.RepoOwnerName()
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/vnd.github+json")

	return &Client{
		client: client,
		tokens: tokens,
		owner:  owner,
		repo:   repo,
		log:    logger.Get().WithFields(logger.Component("github_api")),
	}, nil
}

// request prepares an authenticated request
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.InstallationToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.client.R().SetContext(ctx).SetAuthToken(token), nil
}

// repoPath builds a path under the configured repository
func (c *Client) repoPath(suffix string) string {
	return fmt.Sprintf("/repos/%s/%s%s", c.owner, c.repo, suffix)
}

// OpenPullByHead returns the open pull request whose head is the given
// branch, or nil when none exists
func (c *Client) OpenPullByHead(ctx context.Context, head string) (*PullRequest, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var pulls []PullRequest
	resp, err := req.
		SetQueryParam("state", "open").
		SetQueryParam("head", fmt.Sprintf("%s:%s", c.owner, head)).
		SetResult(&pulls).
		Get(c.repoPath("/pulls"))
	if err != nil {
		return nil, apperror.UpstreamError("list pull requests", err)
	}
	if resp.StatusCode() != 200 {
		return nil, apperror.UpstreamError("list pull requests",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	if len(pulls) == 0 {
		return nil, nil
	}
	return &pulls[0], nil
}

// CreatePull opens a pull request from head into base
func (c *Client) CreatePull(ctx context.Context, title, body, head, base string) (*PullRequest, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var pull PullRequest
	resp, err := req.
		SetBody(map[string]string{
			"title": title,
			"body":  body,
			"head":  head,
			"base":  base,
		}).
		SetResult(&pull).
		Post(c.repoPath("/pulls"))
	if err != nil {
		return nil, apperror.UpstreamError("create pull request", err)
	}
	if resp.StatusCode() != 201 {
		return nil, apperror.UpstreamError("create pull request",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	c.log.Info("Opened pull request",
		logger.Int("number", pull.Number),
		logger.Branch(head),
	)
	return &pull, nil
}

// UpdatePull updates the title, body and base of an existing pull request
func (c *Client) UpdatePull(ctx context.Context, number int, title, body, base string) (*PullRequest, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var pull PullRequest
	resp, err := req.
		SetBody(map[string]string{
			"title": title,
			"body":  body,
			"base":  base,
		}).
		SetResult(&pull).
		Patch(c.repoPath(fmt.Sprintf("/pulls/%d", number)))
	if err != nil {
		return nil, apperror.UpstreamError("update pull request", err)
	}
	if resp.StatusCode() != 200 {
		return nil, apperror.UpstreamError("update pull request",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return &pull, nil
}

// ClosePull closes a pull request without merging it
func (c *Client) ClosePull(ctx context.Context, number int) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]string{"state": "closed"}).
		Patch(c.repoPath(fmt.Sprintf("/pulls/%d", number)))
	if err != nil {
		return apperror.UpstreamError("close pull request", err)
	}
	if resp.StatusCode() == 404 {
		return apperror.NotFound("pull request", apperror.ErrNotFound)
	}
	if resp.StatusCode() != 200 {
		return apperror.UpstreamError("close pull request",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	c.log.Info("Closed pull request", logger.Int("number", number))
	return nil
}

// Issues lists issues in the given state ("open", "closed" or "all").
// GitHub's issues endpoint also returns pull requests; those are filtered
// out so editors only see actual issues.
func (c *Client) Issues(ctx context.Context, state string) ([]Issue, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Issue
		PullRequest *struct{} `json:"pull_request"`
	}
	resp, err := req.
		SetQueryParam("state", state).
		SetQueryParam("per_page", "100").
		SetResult(&raw).
		Get(c.repoPath("/issues"))
	if err != nil {
		return nil, apperror.UpstreamError("list issues", err)
	}
	if resp.StatusCode() != 200 {
		return nil, apperror.UpstreamError("list issues",
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}

	issues := make([]Issue, 0, len(raw))
	for _, item := range raw {
		if item.PullRequest != nil {
			continue
		}
		issues = append(issues, item.Issue)
	}
	return issues, nil
}
