package dto

// OAuthURLResponse carries the provider consent URL the frontend
// redirects to
type OAuthURLResponse struct {
	URL string `json:"url"`
}

// UserInfo represents basic user information in responses
type UserInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UserDetail extends UserInfo with group membership
type UserDetail struct {
	UserInfo
	Groups      []string `json:"groups"`
	Permissions []string `json:"permissions"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
