// Package validation is the single schema engine used by every write path.
// Struct tags on the models declare the rules; custom tags and struct-level
// rules are registered here or by the owning package at init time.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
)

// Messages of the two validation outcomes
const (
	MsgMissingFields    = "Missing required fields"
	MsgValidationFailed = "Validation failed"
)

var (
	alphaSpacePattern = regexp.MustCompile(`^[a-zA-Z\s]*$`)
	specialPattern    = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordMinLength is the shortest accepted password
const PasswordMinLength = 8

// IsStrongPassword mirrors the signup form policy
func IsStrongPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit && specialPattern.MatchString(password)
}

// Validator wraps go-playground/validator with JSON field names and English messages
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	mu       sync.RWMutex
	enums    map[string][]string
}

var (
	globalValidator *Validator
	once            sync.Once
	now             = time.Now
)

// Global returns the process-wide validator
func Global() *Validator {
	once.Do(func() {
		globalValidator = New()
	})
	return globalValidator
}

// New creates a validator with the custom rules registered
func New() *Validator {
	v := &Validator{
		validate: validator.New(),
		enums:    make(map[string][]string),
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	v.trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.trans)

	v.registerCustomRules()
	return v
}

func (v *Validator) registerCustomRules() {
	v.mustRegister("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpacePattern.MatchString(fl.Field().String())
	}, "{0} can only contain letters and spaces")

	v.mustRegister("applicant_age", func(fl validator.FieldLevel) bool {
		dob, ok := fl.Field().Interface().(time.Time)
		if !ok || dob.IsZero() {
			return false
		}
		age := now().Year() - dob.Year()
		return age >= 18 && age <= 50
	}, "Age must be between 18 and 50 years")

	v.mustRegister("not_future_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(now().Year())
	}, "{0} cannot be in the future")

	v.mustRegister("strong_password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}, "{0} must be at least 8 characters with upper and lower case letters, a number and a special character")

	v.mustRegister("department", v.enumRule("department"), "{0} is not a recognised department")

	v.addTranslation("marks_range", "{0} exceeds the maximum for the marks type")
	v.addTranslation("period_order", "{0} must not be before period_from")
	v.addTranslation("spouse_single", "{0} is only allowed when not Single")
}

func (v *Validator) mustRegister(tag string, fn validator.Func, message string) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
	v.addTranslation(tag, message)
}

func (v *Validator) addTranslation(tag, message string) {
	_ = v.validate.RegisterTranslation(tag, v.trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

func (v *Validator) enumRule(name string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v.mu.RLock()
		defer v.mu.RUnlock()
		value := fl.Field().String()
		for _, allowed := range v.enums[name] {
			if allowed == value {
				return true
			}
		}
		return false
	}
}

// RegisterEnum sets the allowed values of an enum-backed tag such as "department"
func (v *Validator) RegisterEnum(name string, values []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enums[name] = append([]string(nil), values...)
}

// RegisterDateType teaches the validator to see a wrapped date as time.Time
func (v *Validator) RegisterDateType(sample interface{}, unwrap func(reflect.Value) time.Time) {
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		return unwrap(field)
	}, sample)
}

// RegisterStructRule adds a cross-field rule for the given types
func (v *Validator) RegisterStructRule(fn validator.StructLevelFunc, types ...interface{}) {
	v.validate.RegisterStructValidation(fn, types...)
}

// Struct validates s and converts failures into *apperrors.ValidationError
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(MsgValidationFailed, nil, map[string]string{"_": err.Error()})
	}
	return v.toAppError(verrs)
}

func (v *Validator) toAppError(verrs validator.ValidationErrors) error {
	var missing []string
	messages := make(map[string]string, len(verrs))

	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		messages[path] = fe.Translate(v.trans)
		if fe.Tag() == "required" {
			missing = append(missing, path)
		}
	}

	message := MsgValidationFailed
	if len(missing) > 0 {
		message = MsgMissingFields
	}
	return apperrors.NewValidationError(message, missing, messages)
}

// fieldPath drops the root struct name: "PersonalDetails.current_address.city" => "current_address.city"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	// Embedded structs without a JSON name surface as their Go type name
	return strings.TrimPrefix(namespace, "Meta.")
}

// Struct validates s with the global validator
func Struct(s interface{}) error {
	return Global().Struct(s)
}
