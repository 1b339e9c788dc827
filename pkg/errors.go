// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package pkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LerianStudio/pagehost/pkg/constant"
)

// EntityNotFoundError records an error indicating an entity was not found in any case that caused it.
// You can use it to representing a Database not found, cache not found or any other repository.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		if strings.TrimSpace(e.EntityType) != "" {
			return fmt.Sprintf("Entity %s not found", e.EntityType)
		}

		if e.Err != nil {
			return e.Err.Error()
		}

		return "entity not found"
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e EntityNotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError records an error raised when an input fails a business validation rule.
type ValidationError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string
	Message    string
	Code       string
	Err        error `json:"err,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// EntityConflictError records an error indicating an entity already exists in some repository
// You can use it to representing a Database conflict, cache or any other repository.
type EntityConflictError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e EntityConflictError) Error() string {
	if e.Err != nil && strings.TrimSpace(e.Message) == "" {
		return e.Err.Error()
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e EntityConflictError) Unwrap() error {
	return e.Err
}

// ForbiddenError indicates an operation that couldn't be performed because the caller has no sufficient privileges.
type ForbiddenError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e ForbiddenError) Error() string {
	return e.Message
}

// UnprocessableOperationError indicates an operation that couldn't be performed because it's invalid.
type UnprocessableOperationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e UnprocessableOperationError) Error() string {
	return e.Message
}

// FailedPreconditionError indicates a precondition failed during an operation.
type FailedPreconditionError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e FailedPreconditionError) Error() string {
	return e.Message
}

// InternalServerError indicates an unexpected server side failure.
type InternalServerError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e InternalServerError) Error() string {
	return e.Message
}

// ResponseError is a struct used to return errors to the client.
type ResponseError struct {
	Code    int    `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error returns the message of the ResponseError.
func (r ResponseError) Error() string {
	return r.Message
}

// ValidationKnownFieldsError records an error that occurred during a validation of known fields.
type ValidationKnownFieldsError struct {
	EntityType string           `json:"entityType,omitempty"`
	Title      string           `json:"title,omitempty"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     FieldValidations `json:"fields,omitempty"`
}

// Error returns the error message for a ValidationKnownFieldsError.
func (r ValidationKnownFieldsError) Error() string {
	return r.Message
}

// FieldValidations is a map of known fields and their validation errors.
type FieldValidations map[string]string

// ValidationUnknownFieldsError records an error that occurred during a validation of unknown fields.
type ValidationUnknownFieldsError struct {
	EntityType string        `json:"entityType,omitempty"`
	Title      string        `json:"title,omitempty"`
	Code       string        `json:"code,omitempty"`
	Message    string        `json:"message,omitempty"`
	Fields     UnknownFields `json:"fields,omitempty"`
}

// Error returns the error message for a ValidationUnknownFieldsError.
func (r ValidationUnknownFieldsError) Error() string {
	return r.Message
}

// UnknownFields is a map of unknown fields and their error messages.
type UnknownFields map[string]any

// Methods to create errors for different scenarios:

// ValidateInternalError validates the error and returns an appropriate InternalServerError.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       constant.ErrInternalServer.Error(),
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later or contact support.",
		Err:        err,
	}
}

// ValidateBadRequestFieldsError validates the error and returns the appropriate bad request error code, title, message, and the invalid fields.
func ValidateBadRequestFieldsError(requiredFields, knownInvalidFields map[string]string, entityType string, unknownFields map[string]any) error {
	if len(unknownFields) == 0 && len(knownInvalidFields) == 0 && len(requiredFields) == 0 {
		return errors.New("expected knownInvalidFields, unknownFields and requiredFields to be non-empty")
	}

	if len(unknownFields) > 0 {
		return ValidationUnknownFieldsError{
			EntityType: entityType,
			Code:       constant.ErrUnexpectedFields.Error(),
			Title:      "Unexpected Fields in the Request",
			Message:    "The request body contains more fields than expected. Please send only the allowed fields as per the documentation. The unexpected fields are listed in the fields object.",
			Fields:     unknownFields,
		}
	}

	if len(requiredFields) > 0 {
		return ValidationKnownFieldsError{
			EntityType: entityType,
			Code:       constant.ErrMissingRequiredFields.Error(),
			Title:      "Missing Fields in Request",
			Message:    "Your request is missing one or more required fields. Please refer to the documentation to ensure all necessary fields are included in your request.",
			Fields:     requiredFields,
		}
	}

	return ValidationKnownFieldsError{
		EntityType: entityType,
		Code:       constant.ErrBadRequest.Error(),
		Title:      "Bad Request",
		Message:    "The server could not understand the request due to malformed syntax. Please check the listed fields and try again.",
		Fields:     knownInvalidFields,
	}
}

// ValidateBusinessError validates the error and returns the appropriate business error code, title, and message.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	errorMap := map[error]error{
		constant.ErrUnsupportedFileType: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrUnsupportedFileType.Error(),
			Title:      "Unsupported File Type",
			Message:    "Only .html and .zip files are supported. Please upload a file with one of these extensions and try again.",
		},
		constant.ErrFileTooLarge: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrFileTooLarge.Error(),
			Title:      "File Too Large",
			Message:    fmt.Sprintf("The uploaded file exceeds the maximum allowed size of %v bytes. Please reduce the file size and try again.", args),
		},
		constant.ErrArchiveTooLarge: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrArchiveTooLarge.Error(),
			Title:      "Archive Too Large",
			Message:    "The uncompressed content of the archive exceeds the maximum allowed size. Please reduce the archive content and try again.",
		},
		constant.ErrArchiveTooManyEntries: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrArchiveTooManyEntries.Error(),
			Title:      "Archive Has Too Many Entries",
			Message:    "The archive contains more entries than the maximum allowed. Please reduce the number of entries and try again.",
		},
		constant.ErrNoHostableContent: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrNoHostableContent.Error(),
			Title:      "No Hostable Content",
			Message:    "The archive does not contain any HTML document. Please include at least one .html file and try again.",
		},
		constant.ErrSanitizationFailed: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrSanitizationFailed.Error(),
			Title:      "Sanitization Failed",
			Message:    "The document content could not be decoded as text and cannot be hosted. Please check the file encoding and try again.",
		},
		constant.ErrQuotaExceeded: UnprocessableOperationError{
			EntityType: entityType,
			Code:       constant.ErrQuotaExceeded.Error(),
			Title:      "Quota Exceeded",
			Message:    "You have reached your artifact limit. Delete an artifact or refer friends to earn additional slots.",
		},
		constant.ErrIndexOutOfRange: EntityNotFoundError{
			EntityType: entityType,
			Code:       constant.ErrIndexOutOfRange.Error(),
			Title:      "Index Out Of Range",
			Message:    "No artifact exists at the given position. Please list your artifacts and use a valid index.",
		},
		constant.ErrStoreUnavailable: ResponseError{
			Code:    503,
			Title:   "Store Unavailable",
			Message: "The artifact store is temporarily unavailable. Please retry the operation shortly.",
		},
		constant.ErrPartialUpload: ResponseError{
			Code:    503,
			Title:   "Partial Upload",
			Message: "The document was stored but its record could not be written. The orphaned content will be reconciled automatically; please retry the upload.",
		},
		constant.ErrPendingUploadNotFound: EntityNotFoundError{
			EntityType: entityType,
			Code:       constant.ErrPendingUploadNotFound.Error(),
			Title:      "Pending Upload Not Found",
			Message:    "There is no pending upload for the given ticket. It may have expired; please upload the archive again.",
		},
		constant.ErrCandidateNotFound: EntityNotFoundError{
			EntityType: entityType,
			Code:       constant.ErrCandidateNotFound.Error(),
			Title:      "Candidate Not Found",
			Message:    "The chosen document is not part of the pending upload. Please pick one of the listed candidates.",
		},
		constant.ErrNotAuthorized: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrNotAuthorized.Error(),
			Title:      "Not Authorized",
			Message:    "You are not authorized to perform this operation.",
		},
		constant.ErrInvalidPathParameter: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrInvalidPathParameter.Error(),
			Title:      "Invalid Path Parameter",
			Message:    fmt.Sprintf("One or more path parameters are in an incorrect format. Please check the following parameters '%v' and ensure they meet the required format before trying again.", args),
		},
		constant.ErrEmptyFile: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrEmptyFile.Error(),
			Title:      "Empty File",
			Message:    "The uploaded file is empty. Please upload a non-empty document and try again.",
		},
		constant.ErrEntityNotFound: EntityNotFoundError{
			EntityType: entityType,
			Code:       constant.ErrEntityNotFound.Error(),
			Title:      "Entity Not Found",
			Message:    "No entity was found for the given ID. Please make sure to use the correct ID for the entity you are trying to manage.",
		},
		constant.ErrInvalidBonusSlotsValue: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrInvalidBonusSlotsValue.Error(),
			Title:      "Invalid Bonus Slots Value",
			Message:    "The bonus slots value must be zero or a positive integer. Please adjust the value and try again.",
		},
		constant.ErrMissingRequiredFields: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrMissingRequiredFields.Error(),
			Title:      "Missing Required Fields",
			Message:    "Your request is missing one or more required fields. Please refer to the documentation to ensure all necessary fields are included in your request.",
		},
	}

	if mappedError, found := errorMap[err]; found {
		return mappedError
	}

	return err
}
