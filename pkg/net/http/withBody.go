// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/LerianStudio/pagehost/pkg"
	cn "github.com/LerianStudio/pagehost/pkg/constant"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// DecodeHandlerFunc is a handler which works with withBody decorator.
// It receives a struct which was decoded by withBody decorator before.
// Ex: json -> withBody -> DecodeHandlerFunc.
type DecodeHandlerFunc func(p any, c *fiber.Ctx) error

// decoderHandler decodes payload coming from requests.
type decoderHandler struct {
	handler      DecodeHandlerFunc
	structSource any
}

func newOfType(s any) any {
	t := reflect.TypeOf(s)
	v := reflect.New(t.Elem())

	return v.Interface()
}

// WithBody wraps a handler with a JSON body decoder and validator for the given struct type.
func WithBody(s any, h DecodeHandlerFunc) fiber.Handler {
	d := &decoderHandler{
		handler:      h,
		structSource: s,
	}

	return d.FiberHandlerFunc
}

// FiberHandlerFunc decodes the incoming request's body to a Go struct, validates it,
// checks for any extraneous fields not defined in the struct, and finally calls the
// wrapped handler function.
func (d *decoderHandler) FiberHandlerFunc(c *fiber.Ctx) error {
	s := newOfType(d.structSource)

	bodyBytes := c.Body()

	// Validate that body is not empty, whitespace-only, or literally "null"
	trimmedBody := strings.TrimSpace(string(bodyBytes))
	if len(trimmedBody) == 0 || trimmedBody == "null" {
		return BadRequest(c, pkg.ValidateBusinessError(cn.ErrMissingRequiredFields, ""))
	}

	if err := json.Unmarshal(bodyBytes, s); err != nil {
		return BadRequest(c, pkg.ValidateBusinessError(cn.ErrBadRequest, ""))
	}

	if unknown := findUnknownFields(bodyBytes, s); len(unknown) > 0 {
		return BadRequest(c, pkg.ValidateBadRequestFieldsError(pkg.FieldValidations{}, pkg.FieldValidations{}, "", unknown))
	}

	if err := validateStruct(s); err != nil {
		return BadRequest(c, err)
	}

	c.Locals("payload", s)

	return d.handler(s, c)
}

// findUnknownFields compares the raw body keys with the keys the struct marshals
// back to, returning any field the struct does not know about.
func findUnknownFields(bodyBytes []byte, s any) map[string]any {
	marshaled, err := json.Marshal(s)
	if err != nil {
		return nil
	}

	var originalMap, marshaledMap map[string]any

	if err := json.Unmarshal(bodyBytes, &originalMap); err != nil {
		return nil
	}

	if err := json.Unmarshal(marshaled, &marshaledMap); err != nil {
		return nil
	}

	diff := make(map[string]any)

	for k, v := range originalMap {
		if _, found := marshaledMap[k]; !found {
			diff[k] = v
		}
	}

	return diff
}

// validateStruct performs tag-based validation, mapping failures to their JSON field names.
func validateStruct(s any) error {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}

		return name
	})

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkg.ValidateBusinessError(cn.ErrBadRequest, "")
	}

	required := make(map[string]string)
	invalid := make(map[string]string)

	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			required[fe.Field()] = "This field is required."
			continue
		}

		invalid[fe.Field()] = "This field failed validation rule '" + fe.Tag() + "'."
	}

	return pkg.ValidateBadRequestFieldsError(required, invalid, "", nil)
}
