package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate          *validator.Validate
	alphaSpaceRegex   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	merchantOrderIDRe = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	validate.RegisterValidation("alpha_space", validateAlphaSpace)
	validate.RegisterValidation("order_id", validateMerchantOrderID)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAlphaSpace(fl validator.FieldLevel) bool {
	return alphaSpaceRegex.MatchString(fl.Field().String())
}

func validateMerchantOrderID(fl validator.FieldLevel) bool {
	return merchantOrderIDRe.MatchString(fl.Field().String())
}
