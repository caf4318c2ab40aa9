package validation

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

	"github.com/yungbote/lingobridge-backend/internal/domain/catalog"
	"github.com/yungbote/lingobridge-backend/internal/domain/student"
)

const (
	sectionKeyTag    = "sectionkey"
	sectionKeyText   = "{0} must be one of the ten module sections"
	cefrTag          = "cefr"
	cefrText         = "{0} must be a CEFR level (A1 to C2)"
	subscriptionTag  = "subscription"
	subscriptionText = "{0} must be free, trial, active or expired"
)

var (
	once       sync.Once
	translator ut.Translator
	setupErr   error
)

// Register installs the custom tags and English messages on gin's validator.
// Safe to call more than once.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")
		setupErr = Init(v, translator)
	})
	return setupErr
}

// Init registers tags and translations on v.
func Init(v *validator.Validate, trans ut.Translator) error {
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return err
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := []struct {
		tag  string
		text string
		fn   validator.Func
	}{
		{sectionKeyTag, sectionKeyText, validSectionKey},
		{cefrTag, cefrText, validCEFR},
		{subscriptionTag, subscriptionText, validSubscription},
	}
	for _, c := range custom {
		if err := v.RegisterValidation(c.tag, c.fn); err != nil {
			return err
		}
		tag, text := c.tag, c.text
		err := v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T(tag, fe.Field())
				return s
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func stringValue(fl validator.FieldLevel) string {
	f := fl.Field()
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return ""
		}
		f = f.Elem()
	}
	return f.String()
}

func validSectionKey(fl validator.FieldLevel) bool {
	_, ok := catalog.ParseSectionKey(stringValue(fl))
	return ok
}

func validCEFR(fl validator.FieldLevel) bool {
	_, ok := catalog.ParseLevel(stringValue(fl))
	return ok
}

func validSubscription(fl validator.FieldLevel) bool {
	_, ok := student.ParseSubscriptionStatus(stringValue(fl))
	return ok
}

// Message flattens binding errors into one readable line.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || translator == nil {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Translate(translator))
	}
	return strings.Join(parts, "; ")
}
