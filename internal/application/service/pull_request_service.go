package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	"github.com/bravo68web/scribe/internal/infrastructure/github"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// closesTrailer matches the issue-linking lines this service writes into
// pull request bodies, so they survive a round trip through an update
var closesTrailer = regexp.MustCompile(`(?m)^Closes #(\d+)\s*$`)

// PullRequestService opens, updates and closes pull requests on the
// upstream repository
type PullRequestService struct {
	gh            *github.Client
	pullRepo      repository.PullRecordRepository
	permissions   *PermissionService
	defaultBranch string
	log           *logger.Logger
}

// NewPullRequestService creates a new PullRequestService instance
func NewPullRequestService(
	gh *github.Client,
	pullRepo repository.PullRecordRepository,
	permissions *PermissionService,
	defaultBranch string,
) *PullRequestService {
	return &PullRequestService{
		gh:            gh,
		pullRepo:      pullRepo,
		permissions:   permissions,
		defaultBranch: defaultBranch,
		log:           logger.Get().WithFields(logger.Component("pulls")),
	}
}

// CreateOrUpdate opens a pull request for the head branch, or updates the
// open one in place when it already exists. Calling it twice with the
// same head never yields two pull requests.
func (s *PullRequestService) CreateOrUpdate(ctx context.Context, caller *models.User, req *dto.PullRequestBody) (*dto.PullRequestResponse, error) {
	base := req.Base
	if base == "" {
		base = s.defaultBranch
	}

	existing, err := s.gh.OpenPullByHead(ctx, req.Head)
	if err != nil {
		return nil, err
	}

	var pull *github.PullRequest
	if existing != nil {
		// Preserve issue links already on the pull request unless the
		// caller supplies a replacement set
		issues := req.Issues
		if len(issues) == 0 {
			issues = parseIssueTrailers(existing.Body)
		}
		body := renderBody(req.Description, issues)

		pull, err = s.gh.UpdatePull(ctx, existing.Number, req.Title, body, base)
		if err != nil {
			return nil, err
		}
	} else {
		body := renderBody(req.Description, req.Issues)
		pull, err = s.gh.CreatePull(ctx, req.Title, body, req.Head, base)
		if err != nil {
			return nil, err
		}
	}

	record := &models.PullRecord{
		Number:     pull.Number,
		HeadBranch: req.Head,
		Author:     caller.Username,
	}
	if err := s.pullRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	return &dto.PullRequestResponse{
		Number: pull.Number,
		Title:  pull.Title,
		State:  pull.State,
		URL:    pull.HTMLURL,
	}, nil
}

// Close closes a pull request without merging. Only the recorded author
// or an Admin may close one.
func (s *PullRequestService) Close(ctx context.Context, caller *models.User, number int) error {
	record, err := s.pullRepo.FindByNumber(ctx, number)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	authorized := false
	if record != nil && record.Author == caller.Username {
		authorized = true
	} else {
		admin, err := s.permissions.IsAdmin(ctx, caller.ID)
		if err != nil {
			return err
		}
		authorized = admin
	}
	if !authorized {
		return apperror.Forbidden("only the author or an admin may close a pull request", apperror.ErrForbidden)
	}

	if err := s.gh.ClosePull(ctx, number); err != nil {
		return err
	}
	if err := s.pullRepo.DeleteByNumber(ctx, number); err != nil {
		return err
	}

	s.log.Info("Pull request closed",
		logger.Int("number", number),
		logger.Username(caller.Username),
	)
	return nil
}

// ListIssues lists upstream issues in the given state
func (s *PullRequestService) ListIssues(ctx context.Context, state string) ([]dto.IssueInfo, error) {
	switch state {
	case "open", "closed", "all":
	default:
		return nil, apperror.ValidationError("state", "state must be open, closed or all")
	}

	issues, err := s.gh.Issues(ctx, state)
	if err != nil {
		return nil, err
	}

	out := make([]dto.IssueInfo, 0, len(issues))
	for _, issue := range issues {
		out = append(out, dto.IssueInfo{
			Number: issue.Number,
			Title:  issue.Title,
			State:  issue.State,
			URL:    issue.HTMLURL,
		})
	}
	return out, nil
}

// renderBody appends one Closes trailer per linked issue, de-duplicated
// and sorted, so GitHub auto-closes them on merge
func renderBody(description string, issues []int) string {
	if len(issues) == 0 {
		return description
	}

	seen := make(map[int]bool, len(issues))
	unique := make([]int, 0, len(issues))
	for _, n := range issues {
		if n > 0 && !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}
	sort.Ints(unique)

	var b strings.Builder
	b.WriteString(strings.TrimRight(description, "\n"))
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	for i, n := range unique {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Closes #%d", n)
	}
	return b.String()
}

// parseIssueTrailers reads the issue numbers back out of a body written
// by renderBody
func parseIssueTrailers(body string) []int {
	matches := closesTrailer.FindAllStringSubmatch(body, -1)
	issues := make([]int, 0, len(matches))
	for _, match := range matches {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		issues = append(issues, n)
	}
	return issues
}
