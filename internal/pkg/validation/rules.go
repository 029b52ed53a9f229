package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// supportedCurrencies are the codes sponsorships and applications may carry.
// Aggregation always normalizes through USD.
var supportedCurrencies = map[string]bool{
	"USD": true,
	"PKR": true,
	"EUR": true,
	"GBP": true,
}

// IsSupportedCurrency reports whether the code can be used for amounts
func IsSupportedCurrency(code string) bool {
	return supportedCurrencies[code]
}

// currencyCode validates request currency fields
func currencyCode(fl validator.FieldLevel) bool {
	return IsSupportedCurrency(fl.Field().String())
}

// applicationStatus validates request status fields against the enum
func applicationStatus(fl validator.FieldLevel) bool {
	return models.IsValidApplicationStatus(models.ApplicationStatus(fl.Field().String()))
}

// documentType validates request document-type fields against the fixed set
func documentType(fl validator.FieldLevel) bool {
	return models.IsValidDocumentType(models.DocumentType(fl.Field().String()))
}

// RegisterCustomRules installs the domain validation rules on gin's binding
// validator. Call once at startup.
func RegisterCustomRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("currencycode", currencyCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("appstatus", applicationStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("doctype", documentType); err != nil {
		return err
	}
	return nil
}
