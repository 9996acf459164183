package dto

// PullRequestBody is the payload for opening or updating a pull request.
// The head branch identifies the pull request; an open one for the same
// head is updated in place.
type PullRequestBody struct {
	Head        string `json:"head" binding:"required"`
	Base        string `json:"base"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Issues      []int  `json:"issues"`
}

// PullRequestResponse reports the pull request after the operation
type PullRequestResponse struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	URL    string `json:"url"`
}

// IssueInfo represents an issue shown to editors
type IssueInfo struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	URL    string `json:"url"`
}
