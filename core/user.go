package core

type (
	// Identity is the caller resolved from the identity provider's userinfo
	// endpoint. Email is the owner key of every drawing row.
	Identity struct {
		Subject   string `json:"sub"`
		Email     string `json:"email"`
		Login     string `json:"preferred_username,omitempty"`
		Name      string `json:"name,omitempty"`
		AvatarURL string `json:"picture,omitempty"`
	}
)
