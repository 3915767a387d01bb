package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DocumentKind names one of the identity documents a provider must upload.
type DocumentKind string

const (
	DocumentGovernmentID    DocumentKind = "government_id"
	DocumentBusinessLicense DocumentKind = "business_license"
	DocumentProofOfAddress  DocumentKind = "proof_of_address"
	DocumentTaxCertificate  DocumentKind = "tax_certificate"
)

// RequiredDocuments lists every document kind basic registration needs, in form order.
var RequiredDocuments = []DocumentKind{
	DocumentGovernmentID,
	DocumentBusinessLicense,
	DocumentProofOfAddress,
	DocumentTaxCertificate,
}

// Document is an uploaded verification file.
type Document struct {
	Kind        DocumentKind
	Filename    string
	ContentType string
	Data        []byte
}

// BasicInfo is the registration form submitted by an unauthenticated visitor.
type BasicInfo struct {
	FullName     string `json:"fullName" validate:"required,max=120"`
	BusinessName string `json:"businessName" validate:"required,max=160"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,min=6,max=32"`
	Password     string `json:"password" validate:"required,min=8"`
	Address      string `json:"address" validate:"required"`
	Description  string `json:"description" validate:"max=2000"`
}

// Normalized returns a copy with surrounding whitespace removed. Passwords are kept verbatim.
func (b BasicInfo) Normalized() BasicInfo {
	b.FullName = strings.TrimSpace(b.FullName)
	b.BusinessName = strings.TrimSpace(b.BusinessName)
	b.Email = strings.TrimSpace(b.Email)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Address = strings.TrimSpace(b.Address)
	b.Description = strings.TrimSpace(b.Description)
	return b
}

// ProviderIdentity is the backend-issued identity created by basic registration.
type ProviderIdentity struct {
	ID           int64  `json:"id"`
	DisplayName  string `json:"displayName"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
}

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists every offending field with a human readable message.
type ValidationError struct {
	Fields map[string]string
}

// Add records a field failure; the first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// ErrOrNil returns the error only when at least one field failed.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateRegistration checks the form and the document set together so the visitor
// sees every problem at once.
func ValidateRegistration(info BasicInfo, documents []Document) error {
	verr := &ValidationError{}
	if err := formValidator.Struct(info); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), describeFieldError(fe))
		}
	}
	present := make(map[DocumentKind]bool, len(documents))
	for _, doc := range documents {
		if len(doc.Data) == 0 {
			continue
		}
		present[doc.Kind] = true
	}
	for _, kind := range RequiredDocuments {
		if !present[kind] {
			verr.Add(string(kind), "document is required")
		}
	}
	return verr.ErrOrNil()
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
