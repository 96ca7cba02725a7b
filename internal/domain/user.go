package domain

// Identity is the verified caller identity supplied by the token-verification
// collaborator. This service never creates, mutates, or deletes users.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
