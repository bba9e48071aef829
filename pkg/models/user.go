package models

// User is a contact-directory entry. Users are immutable once created;
// there are no profile-editing operations in this engine.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	About  string `json:"about,omitempty"`
}
