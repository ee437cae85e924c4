package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidCredentials covers unknown users, wrong passwords and locked accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUnauthenticated    = errors.New("not authenticated")

	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidCartOwner  = errors.New("cart owner must be a user or an anonymous session")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrProductInactive   = errors.New("product is not available")
	ErrNoReference       = errors.New("no payment reference or order id supplied")
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrPersistence wraps storage failures during checkout.
	ErrPersistence = errors.New("could not save order")
)

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// NewValidationError converts validator output into a ValidationError.
// Keys are the json names of the failing fields.
func NewValidationError(err error) *ValidationError {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	} else {
		fields["_"] = err.Error()
	}
	return &ValidationError{Fields: fields}
}

// newValidator returns a validator that reports json field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
