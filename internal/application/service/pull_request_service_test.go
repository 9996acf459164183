package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/infrastructure/github"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

type tokenStub struct{}

func (tokenStub) InstallationToken(ctx context.Context) (string, error) {
	return "tok", nil
}

type fakePR struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
	Head    struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
}

// fakeGitHub simulates the subset of the GitHub pulls and issues API the
// service talks to
type fakeGitHub struct {
	mu      sync.Mutex
	pulls   map[int]*fakePR
	next    int
	created int
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{pulls: make(map[int]*fakePR), next: 7}
}

func (f *fakeGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/docs/pulls", f.handlePulls)
	mux.HandleFunc("/repos/acme/docs/pulls/", f.handlePull)
	mux.HandleFunc("/repos/acme/docs/issues", f.handleIssues)
	return mux
}

func (f *fakeGitHub) handlePulls(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		head := r.URL.Query().Get("head")
		out := []*fakePR{}
		for _, pr := range f.pulls {
			if pr.State == "open" && head == "acme:"+pr.Head.Ref {
				out = append(out, pr)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)

	case http.MethodPost:
		var in struct {
			Title string `json:"title"`
			Body  string `json:"body"`
			Head  string `json:"head"`
			Base  string `json:"base"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)

		pr := &fakePR{
			Number:  f.next,
			Title:   in.Title,
			Body:    in.Body,
			State:   "open",
			HTMLURL: fmt.Sprintf("https://github.com/acme/docs/pull/%d", f.next),
		}
		pr.Head.Ref = in.Head
		pr.Base.Ref = in.Base
		f.pulls[pr.Number] = pr
		f.next++
		f.created++

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(pr)
	}
}

func (f *fakeGitHub) handlePull(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	number, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/repos/acme/docs/pulls/"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	pr, ok := f.pulls[number]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var in map[string]string
	_ = json.NewDecoder(r.Body).Decode(&in)
	if state, ok := in["state"]; ok {
		pr.State = state
	}
	if title, ok := in["title"]; ok {
		pr.Title = title
	}
	if body, ok := in["body"]; ok {
		pr.Body = body
	}
	if base, ok := in["base"]; ok {
		pr.Base.Ref = base
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pr)
}

func (f *fakeGitHub) handleIssues(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`[
		{"number": 1, "title": "Broken link", "state": "open", "html_url": "https://github.com/acme/docs/issues/1"},
		{"number": 2, "title": "Is a pull", "state": "open", "pull_request": {}}
	]`))
}

func (f *fakeGitHub) pull(number int) fakePR {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.pulls[number]
}

func newPullService(t *testing.T, env *testEnv, fake *fakeGitHub) *PullRequestService {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	gh, err := github.NewClient(
		&config.GitHubConfig{APIBaseURL: srv.URL},
		&config.FilesConfig{RepoURL: "https://github.com/acme/docs"},
		tokenStub{},
	)
	require.NoError(t, err)

	return NewPullRequestService(gh, env.pulls, NewPermissionService(env.groups), "main")
}

func TestCreateOrUpdateIdempotentByHead(t *testing.T) {
	env := newTestEnv(t)
	fake := newFakeGitHub()
	svc := newPullService(t, env, fake)
	alice := env.createUser(t, "alice")

	resp, err := svc.CreateOrUpdate(context.Background(), alice, &dto.PullRequestBody{
		Head:        "feature",
		Title:       "Add guide",
		Description: "Adds the getting started guide",
		Issues:      []int{3, 1, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Number)
	assert.Equal(t, "open", resp.State)

	pr := fake.pull(7)
	assert.Equal(t, "main", pr.Base.Ref)
	assert.Equal(t, "Adds the getting started guide\n\nCloses #1\nCloses #3", pr.Body)

	record, err := env.pulls.FindByNumber(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "feature", record.HeadBranch)
	assert.Equal(t, "alice", record.Author)

	// Same head again updates in place; the base is retargeted and issue
	// trailers carry over when the caller supplies none
	resp, err = svc.CreateOrUpdate(context.Background(), alice, &dto.PullRequestBody{
		Head:        "feature",
		Base:        "release",
		Title:       "Add guide, revised",
		Description: "New description",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Number)
	assert.Equal(t, 1, fake.created)

	pr = fake.pull(7)
	assert.Equal(t, "Add guide, revised", pr.Title)
	assert.Equal(t, "release", pr.Base.Ref)
	assert.Equal(t, "New description\n\nCloses #1\nCloses #3", pr.Body)

	// An explicit issue set replaces the previous one, and an omitted base
	// resolves back to the default branch
	_, err = svc.CreateOrUpdate(context.Background(), alice, &dto.PullRequestBody{
		Head:        "feature",
		Title:       "Add guide, revised",
		Description: "New description",
		Issues:      []int{9},
	})
	require.NoError(t, err)
	assert.Equal(t, "New description\n\nCloses #9", fake.pull(7).Body)
	assert.Equal(t, "main", fake.pull(7).Base.Ref)
}

func TestCloseAuthorization(t *testing.T) {
	env := newTestEnv(t)
	fake := newFakeGitHub()
	svc := newPullService(t, env, fake)

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	env.enrollAdmin(t, carol.ID)

	_, err := svc.CreateOrUpdate(context.Background(), alice, &dto.PullRequestBody{
		Head:  "feature",
		Title: "Add guide",
	})
	require.NoError(t, err)

	// Not the author and not an admin
	err = svc.Close(context.Background(), bob, 7)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, "open", fake.pull(7).State)

	// The author may close their own pull request
	require.NoError(t, svc.Close(context.Background(), alice, 7))
	assert.Equal(t, "closed", fake.pull(7).State)

	_, err = env.pulls.FindByNumber(context.Background(), 7)
	assert.True(t, apperror.IsNotFound(err))

	// An admin may close anyone's
	_, err = svc.CreateOrUpdate(context.Background(), alice, &dto.PullRequestBody{
		Head:  "feature",
		Title: "Second try",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Close(context.Background(), carol, 8))
	assert.Equal(t, "closed", fake.pull(8).State)
}

func TestCloseWithoutLocalRecord(t *testing.T) {
	env := newTestEnv(t)
	fake := newFakeGitHub()
	svc := newPullService(t, env, fake)

	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	env.enrollAdmin(t, carol.ID)

	// Opened outside this system: no authorship record exists
	pr := &fakePR{Number: 12, State: "open"}
	pr.Head.Ref = "external"
	fake.pulls[12] = pr

	err := svc.Close(context.Background(), bob, 12)
	assert.True(t, apperror.IsForbidden(err))

	require.NoError(t, svc.Close(context.Background(), carol, 12))
	assert.Equal(t, "closed", fake.pull(12).State)
}

func TestListIssues(t *testing.T) {
	env := newTestEnv(t)
	fake := newFakeGitHub()
	svc := newPullService(t, env, fake)

	issues, err := svc.ListIssues(context.Background(), "open")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, "Broken link", issues[0].Title)

	_, err = svc.ListIssues(context.Background(), "everything")
	assert.Error(t, err)
}

func TestRenderBodyAndParseTrailers(t *testing.T) {
	assert.Equal(t, "plain text", renderBody("plain text", nil))
	assert.Equal(t, "Closes #4", renderBody("", []int{4}))
	assert.Equal(t, "desc\n\nCloses #1\nCloses #2", renderBody("desc\n", []int{2, 1, 2, 0, -3}))

	issues := parseIssueTrailers("desc\n\nCloses #1\nCloses #2")
	assert.Equal(t, []int{1, 2}, issues)

	// Inline mentions are not trailers
	assert.Empty(t, parseIssueTrailers("this Closes #1 inline"))
	assert.Empty(t, parseIssueTrailers(""))
}
