package models

import "errors"

var (
	// ErrIdentityNotFound is returned when a provider response carries no
	// user object to reconcile against.
	ErrIdentityNotFound = errors.New("identity provider response contains no user")

	// ErrDuplicateEmail surfaces the users.email unique index. Concurrent
	// signups racing on the same address both attempt the insert and the
	// loser gets this error; it is never silently merged.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrDuplicateExternalID surfaces the users.external_id unique index.
	ErrDuplicateExternalID = errors.New("a user with this external id already exists")

	// ErrNotFound is a local lookup miss.
	ErrNotFound = errors.New("user not found")

	// ErrUserInactive marks a soft-deactivated account.
	ErrUserInactive = errors.New("user account is inactive")
)
