package validation

import (
	"reflect"
	"regexp"
	"time"
	"unicode"

	"talentlink-appointments/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Letters, numbers, spaces and common punctuation: . ' - / & ( ) ,
var nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

var timeType = reflect.TypeOf(time.Time{})

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("single_line", SingleLine)
	_ = v.RegisterValidation("slot_count", SlotCount)
	_ = v.RegisterValidation("appointment_mode", AppointmentMode)
}

// RegisterGinValidators installs the custom tags on gin's binding engine
func RegisterGinValidators() bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return false
	}
	RegisterValidators(v)
	return true
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // use required if needed
	}
	return nameRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// SingleLine rejects control characters, line breaks included. Such values end up in email headers.
func SingleLine(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// SlotCount requires exactly domain.RequiredSlotCount distinct, non-zero datetimes
func SlotCount(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice || field.Type().Elem() != timeType {
		return false
	}
	slots := make([]time.Time, field.Len())
	for i := range slots {
		slots[i] = field.Index(i).Interface().(time.Time)
	}
	return domain.ValidateProposedSlots(slots) == nil
}

// AppointmentMode accepts online, physical and phone
func AppointmentMode(fl validator.FieldLevel) bool {
	return domain.AppointmentMode(fl.Field().String()).Valid()
}
