package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

var validate = newStructValidator()

func newStructValidator() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	// Report json names so messages line up with request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates `validate:"..."` tags and converts failures to ValidationErrors.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return err
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return errs
}

func messageFor(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

var egnWeights = [9]int{2, 4, 8, 5, 10, 9, 7, 3, 6}

// IsValidEGN checks the length, the encoded birth date and the checksum digit
// of a Bulgarian personal number.
func IsValidEGN(egn string) bool {
	if len(egn) != 10 || !IsNumeric(egn) {
		return false
	}
	if _, ok := EGNBirthDate(egn); !ok {
		return false
	}

	sum := 0
	for i, w := range egnWeights {
		sum += int(egn[i]-'0') * w
	}
	check := sum % 11
	if check == 10 {
		check = 0
	}
	return check == int(egn[9]-'0')
}

// EGNBirthDate decodes the birth date from a personal number. Months above 40
// mark births after 2000, above 20 births before 1900.
func EGNBirthDate(egn string) (time.Time, bool) {
	if len(egn) < 6 || !IsNumeric(egn[:6]) {
		return time.Time{}, false
	}
	yy := int(egn[0]-'0')*10 + int(egn[1]-'0')
	mm := int(egn[2]-'0')*10 + int(egn[3]-'0')
	dd := int(egn[4]-'0')*10 + int(egn[5]-'0')

	year := 1900 + yy
	switch {
	case mm > 40:
		year, mm = 2000+yy, mm-40
	case mm > 20:
		year, mm = 1800+yy, mm-20
	}
	if mm < 1 || mm > 12 || dd < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if date.Day() != dd {
		return time.Time{}, false
	}
	return date, true
}

// NKPD occupation codes are 4 to 8 digits; the first digit is the occupation group.
var nkpdRegex = regexp.MustCompile(`^[1-9][0-9]{3,7}$`)

func IsValidNKPD(code string) bool {
	return nkpdRegex.MatchString(code)
}

// KID economic activity codes: "47", "47.1" or "47.11".
var kidRegex = regexp.MustCompile(`^[0-9]{2}(\.[0-9]{1,2})?$`)

func IsValidKID(code string) bool {
	return kidRegex.MatchString(code)
}
