package token

// ObtainRequest is the body of POST /token/.
type ObtainRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Pair is the answer to a successful login.
type Pair struct {
	// Access is the short lived JWT sent as "Authorization: Bearer <access>".
	Access string `json:"access"`
	// Refresh is the long lived token exchanged at /token/refresh/ for a new access token.
	Refresh string `json:"refresh"`
}

// RefreshRequest is the body of POST /token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the new access token. The refresh token is not rotated.
type RefreshResponse struct {
	Access string `json:"access"`
}
