// Package bind decodes JSON request bodies and validates them with struct tags
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "stylefix/internal/platform/errors"
	"stylefix/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// MaxBody caps how many bytes ParseJSON reads
const MaxBody = 1 << 20

var (
	once  sync.Once
	v     *validator.Validate
	trans ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		v = validator.New(validator.WithRequiredStructEnabled())
		// messages name fields the way clients send them
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		short(v, "min", "{0} must be at least {1}")
		short(v, "max", "{0} must be at most {1}")
	})
	return v, trans
}

func short(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Validate checks s against its validate tags; the first failure becomes a validation error
func Validate(s any) error {
	val, tr := instance()
	err := val.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return perr.Newf(perr.ErrorCodeValidation, "%s", verrs[0].Translate(tr))
	}
	logger.Get().Error().Err(err).Msg("validator internal error")
	return perr.JSONErrf("validation error")
}

// ParseJSON decodes exactly one JSON object into T and validates it
// Unknown fields, trailing data and empty bodies are rejected
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero, dst T
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}
