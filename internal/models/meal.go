// ABOUTME: Meal log entries, custom meal templates, and the user profile.
// ABOUTME: Presence rules are declared as validator tags and mapped to user messages.
package models

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// MealType is the slot of the day a meal was eaten in.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
	MealMisc      MealType = "Misc"
)

// AllMealTypes lists the selectable meal types in display order.
var AllMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack, MealMisc}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// MealEntry is a logged meal or, without a DateTime, a custom meal template.
type MealEntry struct {
	ID       int64    `json:"id,omitempty" yaml:"id,omitempty"`
	LogName  string   `json:"logName" yaml:"log_name" validate:"notblank"`
	DateTime *string  `json:"dateTime,omitempty" yaml:"date_time,omitempty" validate:"required,notblank"`
	LogNotes string   `json:"logNotes,omitempty" yaml:"log_notes,omitempty"`
	MealName string   `json:"mealName" yaml:"meal_name" validate:"notblank"`
	MealType MealType `json:"mealType" yaml:"meal_type" validate:"required,oneof=Breakfast Lunch Dinner Snack Misc"`
	Calories *float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty" yaml:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty" yaml:"carbs,omitempty"`
	Fats     *float64 `json:"fats,omitempty" yaml:"fats,omitempty"`
}

// RecordID returns the storage id of the meal.
func (m *MealEntry) RecordID() int64 { return m.ID }

// SetRecordID assigns the storage id of the meal.
func (m *MealEntry) SetRecordID(id int64) { m.ID = id }

var mealMessages = map[string]string{
	"LogName":  "A valid log name is required.",
	"DateTime": "A valid date & time is required.",
	"MealName": "A valid meal name is required.",
	"MealType": "A valid meal type is required.",
}

// Validate checks the required meal fields and returns the message of the
// first one that is missing. Custom meals are templates and skip the date.
func (m *MealEntry) Validate(custom bool) error {
	var err error
	if custom {
		err = validate.StructExcept(m, "DateTime")
	} else {
		err = validate.Struct(m)
	}
	return firstFieldMessage(err, mealMessages)
}

// UserProfile is the single user record carried in the save file.
type UserProfile struct {
	ID       int64  `json:"id,omitempty"`
	UserName string `json:"userName" validate:"notblank,max=64"`
}

// RecordID returns the storage id of the profile.
func (u *UserProfile) RecordID() int64 { return u.ID }

// SetRecordID assigns the storage id of the profile.
func (u *UserProfile) SetRecordID(id int64) { u.ID = id }

// Validate checks that the profile carries a usable name.
func (u *UserProfile) Validate() error {
	return firstFieldMessage(validate.Struct(u), map[string]string{
		"UserName": "A user name of at most 64 characters is required.",
	})
}

// firstFieldMessage turns the first validator failure into its user message.
// Validator reports failures in field declaration order.
func firstFieldMessage(err error, messages map[string]string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if msg, ok := messages[verrs[0].Field()]; ok {
		return errors.New(msg)
	}
	return verrs[0]
}
