// Package auth holds the identity reconciliation service: it brokers
// signup/signin flows against the hosted auth provider and keeps the local
// users table in step with the provider's records.
package auth

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lebrely-io/backend/internal/models"
	"github.com/lebrely-io/backend/internal/store"
	"github.com/lebrely-io/backend/internal/supabase"
)

// MetadataLocalUserID is the provider metadata key carrying the internal
// row id, stored at signup so later signins can relink even if the
// external id was never attached locally.
const MetadataLocalUserID = "local_user_id"

const metadataName = "name"

// IdentityClient is the boundary to the hosted auth provider.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*supabase.AuthUser, *supabase.Session, error)
	SignIn(ctx context.Context, email, password string) (*supabase.AuthUser, *supabase.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*supabase.Session, error)
	GetUser(ctx context.Context, accessToken string) (*supabase.AuthUser, error)
	ResetPassword(ctx context.Context, email string) error
	SignOut(ctx context.Context, accessToken string) error
}

type Service struct {
	users    *store.Users
	provider IdentityClient
}

func NewService(users *store.Users, provider IdentityClient) *Service {
	return &Service{
		users:    users,
		provider: provider,
	}
}

// SignUpResult carries everything the signup endpoint reports back.
type SignUpResult struct {
	User                      *models.User
	Session                   *supabase.Session
	EmailConfirmationRequired bool
}

// SignUp creates the local row first so its id can ride along to the
// provider as metadata, then registers the account with the provider and
// links the returned external id. The external call is not transactional
// with the local write: if the provider rejects the signup the local row
// is removed again as a compensating step.
func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest) (*SignUpResult, error) {
	name := req.Name
	if len(name) == 0 {
		name = "Unknown"
	}

	localUser := &models.User{
		Name:     name,
		Email:    req.Email,
		IsActive: true,
	}

	if err := s.users.Create(ctx, localUser); err != nil {
		return nil, err
	}

	metadata := make(map[string]any, len(req.Metadata)+2)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata[metadataName] = name
	metadata[MetadataLocalUserID] = localUser.ID

	extUser, session, err := s.provider.SignUp(ctx, req.Email, req.Password, metadata)
	if err != nil {
		s.rollbackSignUp(ctx, localUser)
		return nil, err
	}
	if extUser == nil {
		s.rollbackSignUp(ctx, localUser)
		return nil, models.ErrIdentityNotFound
	}

	if err := s.users.LinkExternal(ctx, localUser, extUser.ID); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user":     localUser.ID,
		"external": extUser.ID,
	}).Infoln("User signed up")

	return &SignUpResult{
		User:                      localUser,
		Session:                   session,
		EmailConfirmationRequired: session == nil,
	}, nil
}

// rollbackSignUp undoes the local insert after the provider rejected the
// account. The row was never linked, so this is outside the no-hard-delete
// rule for reconciled records.
func (s *Service) rollbackSignUp(ctx context.Context, user *models.User) {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		logrus.WithError(err).
			WithField("user", user.ID).
			Warnln("Failed to roll back local user after provider signup failure")
	}
}

// SignIn verifies credentials with the provider and reconciles the
// returned identity to a local row.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, *supabase.Session, error) {
	extUser, session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	localUser, err := s.ResolveLocalUser(ctx, extUser)
	if err != nil {
		return nil, nil, err
	}

	return localUser, session, nil
}

// Refresh exchanges the refresh token and re-resolves the user with the
// new access token so the response can carry the local record.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.User, *supabase.Session, error) {
	session, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	extUser, err := s.provider.GetUser(ctx, session.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	localUser, err := s.ResolveLocalUser(ctx, extUser)
	if err != nil {
		return nil, nil, err
	}

	return localUser, session, nil
}

// CurrentUser validates an access token by forwarding it to the provider
// and maps the identity to the local row. Unlike signin it never creates
// or email-links rows: a miss means the token belongs to an account this
// backend has no record of.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	extUser, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if extUser == nil {
		return nil, models.ErrIdentityNotFound
	}

	localUser, err := s.users.ByExternalID(ctx, extUser.ID)
	if err == nil {
		return localUser, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	if hintedID, ok := localUserIDHint(extUser.UserMetadata); ok {
		localUser, err := s.users.ByID(ctx, hintedID)
		if err == nil {
			if linkErr := s.users.LinkExternal(ctx, localUser, extUser.ID); linkErr != nil {
				return nil, linkErr
			}
			return localUser, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: no local record for external identity %s", models.ErrNotFound, extUser.ID)
}

// SignOut revokes the session at the provider.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	return s.provider.SignOut(ctx, accessToken)
}

// ResetPassword asks the provider to start its recovery flow.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	return s.provider.ResetPassword(ctx, email)
}
