package httpapi

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"schoolattend/internal/schedule"
)

// custom validation tags
const hhmmTag = "hhmm"

var (
	validatorOnce sync.Once
	translator    ut.Translator
)

// registerValidators hooks the custom tags and english messages into gin's
// validator engine. Safe to call more than once.
func registerValidators() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, translator)

		// Use JSON (or query form) tag names for errors instead of Go struct names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := tagName(fld, "json"); name != "" {
				return name
			}
			return tagName(fld, "form")
		})

		_ = v.RegisterValidation(hhmmTag, hhmmValidation)
		_ = v.RegisterTranslation(hhmmTag, translator, func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				return fe.Field() + " must be a 24h time formatted HH:MM"
			})
	})
}

func tagName(fld reflect.StructField, key string) string {
	name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func hhmmValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := schedule.ParseTimeOfDay(s)
	return err == nil
}

// bindErrors turns a binding error into a field -> message map. Errors that
// are not validation failures (bad JSON) are reported under "body".
func bindErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		out[fe.Field()] = msg
	}
	return out
}
