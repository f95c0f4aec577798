package supabase

import (
	"fmt"
	"time"
)

// AuthUser is the provider's view of an account.
type AuthUser struct {
	ID               string         `json:"id"`
	Aud              string         `json:"aud,omitempty"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Session is an issued token pair. The backend never inspects or verifies
// the tokens, it only relays them.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// AuthError is a rejection from the provider: bad credentials, expired
// token, unknown refresh token and the like.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth provider rejected request (%d): %s", e.Status, e.Reason)
}

// apiError covers both error body shapes GoTrue responds with.
type apiError struct {
	Msg              string `json:"msg,omitempty"`
	ErrorField       string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (e *apiError) reason() string {
	switch {
	case len(e.Msg) > 0:
		return e.Msg
	case len(e.ErrorDescription) > 0:
		return e.ErrorDescription
	case len(e.ErrorField) > 0:
		return e.ErrorField
	}
	return "unknown error"
}

// tokenResponse is the password and refresh_token grant response. Signup
// returns the same shape when email confirmation is disabled, or a bare
// AuthUser when confirmation is pending.
type tokenResponse struct {
	Session
	User *AuthUser `json:"user"`
}
