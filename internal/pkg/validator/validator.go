package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks struct tags and returns field -> failed tag, or nil.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// Error is Validate folded into a single error with a stable message.
func Error(v interface{}) error {
	fields := Validate(v)
	if fields == nil {
		return nil
	}

	parts := make([]string, 0, len(fields))
	for field, tag := range fields {
		parts = append(parts, fmt.Sprintf("%s failed %q", field, tag))
	}
	sort.Strings(parts)
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, ", "))
}
