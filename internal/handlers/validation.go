package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/silvioiatech/umbra-accountant/internal/platform/rules"
)

// registerCustomValidators adds domain-specific binding validations so
// malformed category codes are rejected at the request boundary.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("deduction_category", func(fl validator.FieldLevel) bool {
		return rules.ValidDeductionCategory(fl.Field().String())
	})
}
