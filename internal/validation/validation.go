package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"job-portal/internal/model"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct 校验带 validate 标签的输入，失败时返回列出字段的校验错误。
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.Invalid("invalid input")
	}

	var missing, malformed []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		malformed = append(malformed, fe.Field())
	}
	sort.Strings(missing)
	sort.Strings(malformed)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(missing, ", "))
	}
	if len(malformed) > 0 {
		parts = append(parts, "Invalid fields: "+strings.Join(malformed, ", "))
	}
	return model.Invalid("%s", strings.Join(parts, ". "))
}
