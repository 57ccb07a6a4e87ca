package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/cds-engine/internal/model"
)

// RegisterValidators installs the domain enum validators used in request
// binding tags. Call once at startup before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine type %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("ruletype", func(fl validator.FieldLevel) bool {
		switch model.RuleType(fl.Field().String()) {
		case model.RuleTypeAbsolute, model.RuleTypeRelative, model.RuleTypePrecaution:
			return true
		}
		return false
	}); err != nil {
		return err
	}

	return v.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		switch model.AlertSeverity(fl.Field().String()) {
		case model.SeverityCritical, model.SeverityHigh, model.SeverityModerate, model.SeverityLow:
			return true
		}
		return false
	})
}
