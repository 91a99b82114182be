package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/raidsplit/internal/models"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateConfig, models.Config{})
	return v
}

// validateConfig rejects cut percentages that leave a negative even-split pool.
func validateConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(models.Config)
	if cfg.OrganizerCutPercent+cfg.BonusPoolPercent > 100 {
		sl.ReportError(cfg.BonusPoolPercent, "BonusPoolPercent", "bonusPoolPercent", "pctsum", "")
	}
}

// describe flattens validator errors into one readable message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "pctsum":
			msgs = append(msgs, "organizerCutPercent + bonusPoolPercent must not exceed 100")
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
