package controllers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/choprek/utils"
)

// Binding tags "isodate" (YYYY-MM-DD) and "hhmm" (24h HH:MM) used by request structs.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return utils.IsISODate(fl.Field().String())
	})
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return utils.IsClockTime(fl.Field().String())
	})
}
