package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/lebrely-io/backend/internal/models"
	"github.com/lebrely-io/backend/internal/supabase"
)

// ResolveLocalUser maps a provider identity onto exactly one local row,
// linking or creating as needed. Lookup order: external id, then the
// local_user_id metadata hint, then email, then a fresh insert. Every
// mutating branch commits immediately; there is no transaction spanning
// the provider call and the local write, so an external account without a
// local link is recovered here on the next signin via the email lookup.
//
// The chain is not atomic across its lookups and the final insert. Two
// concurrent first-signins for the same new email both reach the insert
// and the loser surfaces models.ErrDuplicateEmail rather than being
// merged.
func (s *Service) ResolveLocalUser(ctx context.Context, extUser *supabase.AuthUser) (*models.User, error) {
	if extUser == nil || len(extUser.ID) == 0 {
		return nil, models.ErrIdentityNotFound
	}

	// Fast path: already linked.
	localUser, err := s.users.ByExternalID(ctx, extUser.ID)
	if err == nil {
		return localUser, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	// The signup flow stores the internal row id in the provider metadata,
	// so a row that never got its external id attached can still be found.
	if hintedID, ok := localUserIDHint(extUser.UserMetadata); ok {
		localUser, err := s.users.ByID(ctx, hintedID)
		if err == nil {
			if linkErr := s.users.LinkExternal(ctx, localUser, extUser.ID); linkErr != nil {
				return nil, linkErr
			}
			logrus.WithFields(logrus.Fields{
				"user":     localUser.ID,
				"external": extUser.ID,
			}).Debugln("Linked local user via metadata hint")
			return localUser, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	// Pre-provider rows (or rows whose signup lost its link) match on email.
	localUser, err = s.users.ByEmail(ctx, extUser.Email)
	if err == nil {
		if linkErr := s.users.LinkExternal(ctx, localUser, extUser.ID); linkErr != nil {
			return nil, linkErr
		}
		logrus.WithFields(logrus.Fields{
			"user":     localUser.ID,
			"external": extUser.ID,
		}).Debugln("Linked local user via email")
		return localUser, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	// No local record at all: create one, linked.
	externalID := extUser.ID
	localUser = &models.User{
		ExternalID: &externalID,
		Name:       nameHint(extUser.UserMetadata),
		Email:      extUser.Email,
		IsActive:   true,
	}
	if err := s.users.Create(ctx, localUser); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user":     localUser.ID,
		"external": extUser.ID,
	}).Infoln("Created local user for external identity")

	return localUser, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

// localUserIDHint extracts the internal row id stored in the provider
// metadata at signup. JSON decoding hands numbers back as float64, but the
// value may also arrive as a string or an int depending on how the
// metadata was written.
func localUserIDHint(metadata map[string]any) (uint, bool) {
	raw, ok := metadata[MetadataLocalUserID]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return uint(v), true
		}
	case int:
		if v > 0 {
			return uint(v), true
		}
	case int64:
		if v > 0 {
			return uint(v), true
		}
	case uint:
		if v > 0 {
			return v, true
		}
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil && id > 0 {
			return uint(id), true
		}
	}

	return 0, false
}

func nameHint(metadata map[string]any) string {
	if name, ok := metadata[metadataName].(string); ok && len(name) > 0 {
		return name
	}
	return "Unknown"
}
