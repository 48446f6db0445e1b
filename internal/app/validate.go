package app

import (
	"reflect"
	"strings"

	"evaluation-console/internal/domain"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags
	notBlankTag   = "notblank"
	qcmOptionsTag = "qcm_options"
	qcmCorrectTag = "qcm_correct"
)

// Validator checks drafts before they are sent and reports errors with the
// same field keys the backend uses in its 422 responses.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(questionDraftStructValidation, domain.QuestionDraft{})

	// default translations are already registered; a noop register func
	// satisfies RegisterTranslation.
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, qcmOptionsTag, qcmCorrectTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomValidationErrs)
	}
	return &Validator{validate: validate, translator: translator}
}

// Struct validates s and returns a *domain.ValidationError on failure.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		key := fieldPath(fe.Namespace())
		if _, seen := fields[key]; !seen {
			fields[key] = fe.Translate(v.translator)
		}
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath turns "QuestionDraft.options[0].texte" into "options.0.texte".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case qcmOptionsTag:
		return "a QCM question needs 2 or 3 options"
	case qcmCorrectTag:
		return "a QCM question needs exactly one correct option"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// questionDraftStructValidation enforces the QCM shape.
func questionDraftStructValidation(sl validator.StructLevel) {
	draft, ok := sl.Current().Interface().(domain.QuestionDraft)
	if !ok || draft.Type != domain.QuestionQCM {
		return
	}
	if n := len(draft.Choices); n < 2 || n > 3 {
		sl.ReportError(draft.Choices, "options", "Choices", qcmOptionsTag, "")
		return
	}
	correct := 0
	for _, c := range draft.Choices {
		if c.Correct {
			correct++
		}
	}
	if correct != 1 {
		sl.ReportError(draft.Choices, "options", "Choices", qcmCorrectTag, "")
	}
}
