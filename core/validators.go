package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	joinCodeTag   = "joincode"
	joinCodeText  = "Enter a valid join code."
	joinCodeRegex = regexp.MustCompile(`^[A-Z0-9]{6,10}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	Translator, _ = uni.GetTranslator("en")

	Validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(joinCodeTag, joinCodeValidation)
	RegisterCustomTranslation(joinCodeTag, joinCodeText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateFieldErrors flattens a validator error into field -> message,
// ready for inline form rendering.
func TranslateFieldErrors(err error) map[string]string {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fldErrs := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		fldErrs[vErr.Field()] = vErr.Translate(Translator)
	}
	return fldErrs
}

// Custom Global Validators

// joinCodeValidation accepts classroom join codes: 6-10 alphanumeric
// characters. Codes must be normalized (trimmed, uppercased) before
// validation; case-insensitivity is handled by the normalization step.
func joinCodeValidation(fl validator.FieldLevel) bool {
	return joinCodeRegex.MatchString(fl.Field().String())
}
