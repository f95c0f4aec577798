package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebrely-io/backend/internal/models"
	"github.com/lebrely-io/backend/internal/supabase"
)

func TestSignUp_AutoConfirmed(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	provider.signUpUser = extUser("ext-1", "alice@example.com", nil)
	provider.signUpSession = &supabase.Session{AccessToken: "at", RefreshToken: "rt", TokenType: "bearer"}

	result, err := service.SignUp(ctx, models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.False(t, result.EmailConfirmationRequired)
	require.NotNil(t, result.Session)
	assert.Equal(t, "at", result.Session.AccessToken)

	// The local row exists and is linked to the provider account.
	require.NotNil(t, result.User.ExternalID)
	assert.Equal(t, "ext-1", *result.User.ExternalID)

	stored, err := users.ByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, stored.ID)
	assert.Equal(t, "Alice", stored.Name)
}

func TestSignUp_EmailConfirmationPending(t *testing.T) {
	service, _, provider := newTestService(t)

	provider.signUpUser = extUser("ext-1", "alice@example.com", nil)
	provider.signUpSession = nil

	result, err := service.SignUp(context.Background(), models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.True(t, result.EmailConfirmationRequired)
	assert.Nil(t, result.Session)
}

func TestSignUp_DuplicateEmailFailsBeforeProviderCall(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Name: "Alice", Email: "alice@example.com", IsActive: true}))

	_, err := service.SignUp(ctx, models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Name:     "Imposter",
	})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	assert.Zero(t, provider.signUpCalls)
}

func TestSignUp_ProviderFailureRollsBackLocalRow(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	provider.signUpErr = &supabase.AuthError{Status: 422, Reason: "password too weak"}

	_, err := service.SignUp(ctx, models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "weak",
		Name:     "Alice",
	})
	require.Error(t, err)

	var authErr *supabase.AuthError
	assert.ErrorAs(t, err, &authErr)

	// The compensating delete removed the unlinked row, so the email is
	// free to retry.
	_, err = users.ByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSignUp_ProviderReturnsNoUser(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	provider.signUpUser = nil
	provider.signUpSession = nil

	_, err := service.SignUp(ctx, models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, models.ErrIdentityNotFound)

	_, err = users.ByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSignUp_DefaultsName(t *testing.T) {
	service, _, provider := newTestService(t)

	provider.signUpUser = extUser("ext-1", "alice@example.com", nil)
	provider.signUpSession = &supabase.Session{AccessToken: "at", RefreshToken: "rt"}

	result, err := service.SignUp(context.Background(), models.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", result.User.Name)
}

func TestSignIn_ReconcilesUser(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	provider.signInUser = extUser("ext-1", "alice@example.com", map[string]any{"name": "Alice"})
	provider.signInSession = &supabase.Session{AccessToken: "at", RefreshToken: "rt"}

	user, session, err := service.SignIn(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "Alice", user.Name)

	stored, err := users.ByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestSignIn_ProviderRejection(t *testing.T) {
	service, _, provider := newTestService(t)

	provider.signInErr = &supabase.AuthError{Status: 400, Reason: "invalid login credentials"}

	_, _, err := service.SignIn(context.Background(), "alice@example.com", "wrong")
	var authErr *supabase.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 400, authErr.Status)
}

func TestRefresh_ResolvesUserWithNewToken(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	existing := &models.User{Name: "Alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, users.Create(ctx, existing))
	require.NoError(t, users.LinkExternal(ctx, existing, "ext-1"))

	provider.refreshSession = &supabase.Session{AccessToken: "new-at", RefreshToken: "new-rt"}
	provider.getUserResult = extUser("ext-1", "alice@example.com", nil)

	user, session, err := service.Refresh(ctx, "old-rt")
	require.NoError(t, err)
	assert.Equal(t, "new-at", session.AccessToken)
	assert.Equal(t, existing.ID, user.ID)
}

func TestRefresh_InvalidToken(t *testing.T) {
	service, _, provider := newTestService(t)

	provider.refreshErr = &supabase.AuthError{Status: 401, Reason: "invalid refresh token"}

	_, _, err := service.Refresh(context.Background(), "bogus")
	var authErr *supabase.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestCurrentUser_ByExternalID(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	existing := &models.User{Name: "Alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, users.Create(ctx, existing))
	require.NoError(t, users.LinkExternal(ctx, existing, "ext-1"))

	provider.getUserResult = extUser("ext-1", "alice@example.com", nil)

	user, err := service.CurrentUser(ctx, "some-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
}

func TestCurrentUser_HintRelink(t *testing.T) {
	service, users, provider := newTestService(t)
	ctx := context.Background()

	existing := &models.User{Name: "Alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, users.Create(ctx, existing))

	provider.getUserResult = extUser("ext-1", "alice@example.com",
		map[string]any{MetadataLocalUserID: float64(existing.ID)})

	user, err := service.CurrentUser(ctx, "some-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	reloaded, err := users.ByID(ctx, existing.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ExternalID)
	assert.Equal(t, "ext-1", *reloaded.ExternalID)
}

func TestCurrentUser_NoLocalRecord(t *testing.T) {
	service, _, provider := newTestService(t)

	// No email fallback here: an unknown identity is a miss, not a
	// creation.
	provider.getUserResult = extUser("ext-1", "alice@example.com", nil)

	_, err := service.CurrentUser(context.Background(), "some-token")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSignOutAndResetPassword_Passthrough(t *testing.T) {
	service, _, provider := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, service.SignOut(ctx, "token"))
	assert.NoError(t, service.ResetPassword(ctx, "alice@example.com"))

	provider.signOutErr = &supabase.AuthError{Status: 401, Reason: "invalid token"}
	assert.Error(t, service.SignOut(ctx, "token"))

	provider.resetPasswordErr = &supabase.AuthError{Status: 429, Reason: "over email rate limit"}
	assert.Error(t, service.ResetPassword(ctx, "alice@example.com"))
}
