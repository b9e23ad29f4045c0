package handler

// registerRequest is the body of POST /api/auth/register. Presence and
// format rules live in the auth service; the tags here only bound sizes.
type registerRequest struct {
	Name     string `json:"name"     validate:"max=100"`
	Email    string `json:"email"    validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

type publicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type registerResponse struct {
	Message string     `json:"message"`
	User    publicUser `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type csrfTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
}

// errorResponse documents the error envelope for swagger.
type errorResponse struct {
	Error string `json:"error"`
}
