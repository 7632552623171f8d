package dashboard

import "errors"

var (
	ErrUserNotInContext    = errors.New("user_id not found in claims")
	ErrFilterStateNotFound = errors.New("filter state not found")
	ErrGroupNotFound       = errors.New("group not found in current view")
)
