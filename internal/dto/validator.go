package dto

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Registers the beforetoday rule used on contact birthdays. A birthday
// in the future is always bad data, whatever the date format says.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("beforetoday", beforeToday)
	}
}

func beforeToday(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		// Format errors are the datetime rule's to report
		return true
	}
	return !t.After(time.Now())
}
