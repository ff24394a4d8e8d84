package http

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

var registerOnce sync.Once

// RegisterValidators installs the price-specific binding tags on gin's
// validator engine. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = v.RegisterValidation("price_field", validatePriceField)
	})
	return err
}

// validatePriceField accepts the canonical "<type>_price_<currency>" names.
func validatePriceField(fl validator.FieldLevel) bool {
	_, err := domain.ParseFieldKey(fl.Field().String())
	return err == nil
}
