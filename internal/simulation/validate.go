package simulation

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/pitwall/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", finite)
	return v
}

// finite rejects NaN and infinities; +Inf satisfies gt=0 on its own
func finite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ValidateField checks competitors and circuit before any simulation work starts
func ValidateField(competitors []models.Competitor, circuit models.Circuit) error {
	if err := validate.Struct(circuit); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidCircuit, describe(err))
	}

	seen := make(map[string]struct{}, len(competitors))
	for i, c := range competitors {
		if err := validate.Struct(c); err != nil {
			return fmt.Errorf("%w: competitor %d (%q): %s", models.ErrInvalidCompetitor, i, c.Name, describe(err))
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: %q", models.ErrDuplicateCompetitor, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msg := ""
	for i, fieldError := range validationErrors {
		if i > 0 {
			msg += ", "
		}
		msg += fmt.Sprintf("%s failed %s=%s (got %v)", fieldError.Field(), fieldError.Tag(), fieldError.Param(), fieldError.Value())
	}
	return msg
}
