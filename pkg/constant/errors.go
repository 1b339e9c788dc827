package constant

import (
	"errors"
)

// List of errors that can be returned.
// You can standardize errors
// Standardized error
var (
	ErrMissingRequiredFields  = errors.New("PGH-0001")
	ErrUnsupportedFileType    = errors.New("PGH-0002")
	ErrFileTooLarge           = errors.New("PGH-0003")
	ErrArchiveTooLarge        = errors.New("PGH-0004")
	ErrArchiveTooManyEntries  = errors.New("PGH-0005")
	ErrNoHostableContent      = errors.New("PGH-0006")
	ErrSanitizationFailed     = errors.New("PGH-0007")
	ErrQuotaExceeded          = errors.New("PGH-0008")
	ErrIndexOutOfRange        = errors.New("PGH-0009")
	ErrStoreUnavailable       = errors.New("PGH-0010")
	ErrPartialUpload          = errors.New("PGH-0011")
	ErrPendingUploadNotFound  = errors.New("PGH-0012")
	ErrCandidateNotFound      = errors.New("PGH-0013")
	ErrNotAuthorized          = errors.New("PGH-0014")
	ErrInvalidPathParameter   = errors.New("PGH-0015")
	ErrEmptyFile              = errors.New("PGH-0016")
	ErrBadRequest             = errors.New("PGH-0017")
	ErrInternalServer         = errors.New("PGH-0018")
	ErrEntityNotFound         = errors.New("PGH-0019")
	ErrUnexpectedFields       = errors.New("PGH-0020")
	ErrInvalidBonusSlotsValue = errors.New("PGH-0021")
)
