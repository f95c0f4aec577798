package auth

import (
	"fmt"

	"github.com/lebrely-io/backend/internal/models"
)

// Capability names a permission the HTTP layer can require.
type Capability string

const (
	// CapabilityActiveAccount requires the local account to not be
	// soft-deactivated.
	CapabilityActiveAccount Capability = "active_account"
)

// Decision is a typed authorization outcome. Denials always carry a
// reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize checks whether the user holds the given capability. There is
// no role model yet; unknown capabilities are denied, not ignored.
func Authorize(user *models.User, capability Capability) Decision {
	if user == nil {
		return deny("no authenticated user")
	}

	switch capability {
	case CapabilityActiveAccount:
		if !user.IsActive {
			return deny(models.ErrUserInactive.Error())
		}
		return allow()
	default:
		return deny(fmt.Sprintf("unknown capability: %s", capability))
	}
}
