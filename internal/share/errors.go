package share

import "errors"

var (
	// ErrInvalidLink means the share URL does not start with the service's
	// fixed share-link prefix.
	ErrInvalidLink = errors.New("invalid share link")

	// ErrAuthRequired means the share is password protected and no password
	// prompt was configured on the session.
	ErrAuthRequired = errors.New("share is password protected")

	// ErrWrongPassword means the service rejected the supplied password.
	ErrWrongPassword = errors.New("wrong password")

	// ErrTitleNotFound means the share page carried no og:title marker.
	ErrTitleNotFound = errors.New("share title not found")

	// ErrListing means a directory listing request failed. A listing failure
	// is fatal to the whole enumeration.
	ErrListing = errors.New("directory listing failed")

	// ErrTransfer means a file download could not be opened or read.
	// Transfer failures are isolated per file.
	ErrTransfer = errors.New("file transfer failed")
)
