package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// allowedFields are the JSON keys a book payload may contain.
var allowedFields = map[string]bool{
	"title":         true,
	"author":        true,
	"publishedDate": true,
	"isbn":          true,
}

var isbnPattern = regexp.MustCompile(`^[0-9]{13}$`)

// bookRequest is the decoded payload. Pointer fields distinguish an
// absent or null key from an empty string.
type bookRequest struct {
	Title         *string `json:"title"         validate:"required,notblank"`
	Author        *string `json:"author"        validate:"required,notblank"`
	PublishedDate *string `json:"publishedDate" validate:"required,notblank,datetime=2006-01-02"`
	ISBN          *string `json:"isbn"          validate:"required,notblank,isbn13digits"`
}

// Validator checks and normalizes book payloads. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the book rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("isbn13digits", func(fl validator.FieldLevel) bool {
		return isbnPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Validate decodes payload and checks every rule. Structural problems
// (malformed JSON, an id, unknown keys) fail with a single message; field
// violations are all collected into one field map.
func (v *Validator) Validate(payload []byte) (*domain.BookInput, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, domain.NewError(domain.KindBadRequest, MsgInvalidFormat, ErrInvalidFormat)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(payload, &keys); err != nil || keys == nil {
		return nil, domain.NewError(domain.KindBadRequest, MsgInvalidFormat, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	if _, ok := keys["id"]; ok {
		return nil, domain.NewError(domain.KindBadRequest, MsgIDProvided, ErrIDProvided)
	}
	for key := range keys {
		if !allowedFields[key] {
			return nil, domain.NewError(domain.KindBadRequest, MsgUnknownField, fmt.Errorf("%w: %q", ErrUnknownField, key))
		}
	}

	var req bookRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, domain.NewError(domain.KindBadRequest, MsgInvalidFormat, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	for _, s := range []*string{req.Title, req.Author, req.PublishedDate, req.ISBN} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}

	if err := v.validate.Struct(&req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("failed to validate book payload: %w", err)
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return nil, domain.NewFieldErrors(fields)
	}

	published, err := domain.ParseDate(*req.PublishedDate)
	if err != nil {
		// datetime already accepted the value, so this is unreachable in practice
		return nil, domain.NewFieldErrors(map[string]string{"publishedDate": dateMessage})
	}

	return &domain.BookInput{
		Title:         *req.Title,
		Author:        *req.Author,
		PublishedDate: published,
		ISBN:          *req.ISBN,
	}, nil
}

const dateMessage = "publishedDate must be a valid date (YYYY-MM-DD)"

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "notblank":
		return fe.Field() + " cannot be blank"
	case "datetime":
		return dateMessage
	case "isbn13digits":
		return "isbn must be a 13-digit number"
	default:
		return fe.Field() + " is invalid"
	}
}
