package model

// UnknownUsername is sent when no identity is available.
const UnknownUsername = "unknown"

// Identity is the current user as seen by the dispatcher.
type Identity struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	PersonalAuthToken string `json:"personalAuthToken"`
}

// DisplayName returns the username or UnknownUsername when it is empty.
func (i Identity) DisplayName() string {
	if i.Username == "" {
		return UnknownUsername
	}
	return i.Username
}
