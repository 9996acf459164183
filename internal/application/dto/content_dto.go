package dto

// SaveDocRequest carries new document contents and an optional commit
// message
type SaveDocRequest struct {
	Content string `json:"content" binding:"required"`
	Message string `json:"message"`
}

// DeleteRequest carries an optional commit message for a removal
type DeleteRequest struct {
	Message string `json:"message"`
}

// CommitResponse reports the commit that landed
type CommitResponse struct {
	Commit string `json:"commit"`
}

// CurrentBranchResponse reports the branch the working tree is on
type CurrentBranchResponse struct {
	Branch string `json:"branch"`
}

// DocResponse carries document contents
type DocResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
