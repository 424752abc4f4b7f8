package handlers

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"sales_arena/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the domain tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	// report json names in field errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"stage_name": func(fl validator.FieldLevel) bool {
			n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
			return n >= 1 && n <= 100
		},
		"avatar_id": func(fl validator.FieldLevel) bool {
			id := fl.Field().Int()
			return id >= domain.MinAvatarID && id <= domain.MaxAvatarID
		},
		"role": func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
	}
	return out
}
