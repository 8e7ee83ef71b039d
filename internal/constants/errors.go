package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIEndpoint      = errors.New("no API endpoint configured, use --api or 'csctl config set api <url>'")
	ErrNotAuthenticated   = errors.New("not authenticated, run 'csctl login' first")
	ErrPurgeNotConfirmed  = errors.New("purge requires --yes to confirm")
	ErrInvalidQuantityArg = errors.New("invalid quantity update, expected ITEM_ID=QUANTITY")
)

// Validation errors.
var (
	ErrInvalidID            = errors.New("invalid resource ID")
	ErrUnknownResourceType  = errors.New("unknown resource type")
	ErrUnsupportedOutputFmt = errors.New("unsupported output format")
)
