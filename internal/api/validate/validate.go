package validate

import (
	"github.com/go-playground/validator/v10"
)

var v = validator.New()

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Struct validates a request struct and returns per-field errors, or nil.
func Struct(obj any) []ErrField {
	err := v.Struct(obj)
	if err == nil {
		return nil
	}
	var out []ErrField
	for _, fe := range err.(validator.ValidationErrors) {
		out = append(out, ErrField{Field: fe.Field(), Msg: msgFor(fe)})
	}
	return out
}

func msgFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "numeric":
		return "must be a number"
	case "uuid4", "uuid":
		return "must be a valid uuid"
	default:
		return "invalid value"
	}
}
