package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lebrely-io/backend/internal/models"
)

func TestAuthorize_ActiveAccount(t *testing.T) {
	active := &models.User{ID: 1, Email: "alice@example.com", IsActive: true}
	inactive := &models.User{ID: 2, Email: "bob@example.com", IsActive: false}

	decision := Authorize(active, CapabilityActiveAccount)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)

	decision = Authorize(inactive, CapabilityActiveAccount)
	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
}

func TestAuthorize_NilUser(t *testing.T) {
	decision := Authorize(nil, CapabilityActiveAccount)
	assert.False(t, decision.Allowed)
}

func TestAuthorize_UnknownCapability(t *testing.T) {
	user := &models.User{ID: 1, IsActive: true}

	decision := Authorize(user, Capability("launch_missiles"))
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "unknown capability")
}
