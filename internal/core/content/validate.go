package content

import (
	"sync"

	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/validate"
)

// Result is the outcome of validating one content item
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator checks content before any rule is evaluated
type Validator interface {
	Validate(c Content) Result
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(c Content) Result

// Validate implements Validator
func (f ValidatorFunc) Validate(c Content) Result { return f(c) }

const tagHasContent = "has_content"

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		validate.RegisterStruct(func(sl validate.StructLevel) {
			c := sl.Current().Interface().(Content)
			if !c.HasText() && !c.HasMedia() {
				sl.ReportError(c.Text, "text", "Text", tagHasContent, "")
			}
		}, tagHasContent, "content must include {0} or at least one media reference (photo, video, document, audio)", Content{})
	})
}

type defaultValidator struct{}

// DefaultValidator returns the stock validator: text or media must be present
func DefaultValidator() Validator {
	register()
	return defaultValidator{}
}

func (defaultValidator) Validate(c Content) Result {
	err := validate.Get().Validator.Struct(c)
	if err == nil {
		return Result{Valid: true}
	}
	return Result{Valid: false, Errors: validate.Messages(err)}
}

// Validate runs the default validator
func Validate(c Content) Result { return DefaultValidator().Validate(c) }

// ValidationError turns a failed Result into a Validation error carrying every message
// a valid result yields nil
func ValidationError(r Result) error {
	if r.Valid {
		return nil
	}
	msg := "invalid content"
	if len(r.Errors) > 0 {
		msg = "invalid content: " + r.Errors[0]
	}
	return perr.WithDetails(perr.New(perr.ErrorCodeValidation, msg), r.Errors...)
}
