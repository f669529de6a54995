package contacts

import "errors"

// Sentinel errors for the contacts service layer.
var (
	ErrListNotFound    = errors.New("contact list not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrNoHeader        = errors.New("no header row detected in CSV file")
	ErrNoEmailColumn   = errors.New("CSV header has no email column")
)
