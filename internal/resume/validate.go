package resume

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned when a user edit breaks a field rule.
var ErrInvalidRecord = errors.New("invalid resume record")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is one failed rule on a user-edited record.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// EditError lists every failed rule; it unwraps to ErrInvalidRecord.
type EditError struct {
	Fields []FieldError
}

func (e *EditError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", f.Field, f.Rule, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", f.Field, f.Rule))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRecord, strings.Join(parts, "; "))
}

func (e *EditError) Unwrap() error { return ErrInvalidRecord }

// PrepareEdit checks a user-edited record (summary length, email format) and
// returns it with nil lists replaced by empty ones.
func PrepareEdit(r Record) (Record, error) {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		out := &EditError{Fields: make([]FieldError, 0, len(verrs))}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{
				Field: strings.TrimPrefix(fe.Namespace(), "Record."),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		return Record{}, out
	}
	r.canonicalize()
	return r, nil
}
