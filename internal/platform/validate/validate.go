// Package validate owns the process-wide go-playground validator and its english translator
// Content validation, rule-set loading and HTTP binding all share it
package validate

import (
	stderrs "errors"
	"reflect"
	"strings"
	"sync"

	perr "crosspost/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// StructLevel aliases validator.StructLevel
type StructLevel = validator.StructLevel

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// Svc holds the validator and translator pair
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
	mu   sync.Mutex // serializes registrations, validator registration is not goroutine safe
)

// Init builds the singleton with english translations and json/yaml tag names
func Init() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(tagName)

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerMessage(v, trans, "min", "{0} must be at least {1}")
		registerMessage(v, trans, "max", "{0} must be at most {1}")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// Get returns the singleton, initializing on first use
func Get() *Svc { return Init() }

// tagName prefers the json name, then yaml, then the Go field name
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "yaml"} {
		tag := fld.Tag.Get(key)
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return fld.Name
}

// RegisterTag registers a custom field tag together with its english message
// the message may use {0} for the field name and {1} for the tag param
func RegisterTag(tag string, fn validator.Func, message string) error {
	s := Get()
	mu.Lock()
	defer mu.Unlock()
	if err := s.Validator.RegisterValidation(tag, fn); err != nil {
		return err
	}
	registerMessage(s.Validator, s.Translator, tag, message)
	return nil
}

// RegisterStruct registers a struct-level rule and the message for the tag it reports
func RegisterStruct(fn validator.StructLevelFunc, tag, message string, types ...any) {
	s := Get()
	mu.Lock()
	defer mu.Unlock()
	s.Validator.RegisterStructValidation(fn, types...)
	registerMessage(s.Validator, s.Translator, tag, message)
}

// Struct validates v and returns a Validation error whose details list every violation
// the message is the first violation
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if stderrs.As(err, &inv) {
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validator internal error")
	}
	msgs := Messages(err)
	field, _ := FieldAndMessage(err)
	return perr.WithDetails(perr.WithField(perr.New(perr.ErrorCodeValidation, msgs[0]), field), msgs...)
}

// Messages flattens a validation error into translated messages, one per violation
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stderrs.As(err, &verrs) {
		out := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fe.Translate(Get().Translator))
		}
		return out
	}
	return []string{err.Error()}
}

// FieldAndMessage returns the first offending field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if stderrs.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	return "", err.Error()
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, message string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}
