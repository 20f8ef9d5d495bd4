package response

// Error is the body of every failed request; Error is a stable machine token.
type Error struct {
	Error string `json:"error" example:"not_found"`
}
