package models

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the model rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(manualReminderRule, ManualReminder{})
	})
	return validate
}

// Validate checks a record against its struct tags and model rules.
func Validate(record interface{}) error {
	return Validator().Struct(record)
}

func manualReminderRule(sl validator.StructLevel) {
	r := sl.Current().Interface().(ManualReminder)
	if !r.HasDueDate() && !r.HasDueOdometer() {
		sl.ReportError(r.DueDate, "DueDate", "due_date", "due_date_or_odometer", "")
	}
}
