package enrollment

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hostelhub/hostelctl/internal/apiclient"
)

// StudentForm holds the details entered in the last step of the workflow.
// The bed is taken from the workflow's selection, not from the form.
type StudentForm struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone" validate:"required,min=7,max=20"`
	Address        string  `json:"address"`
	GuardianName   string  `json:"guardianName"`
	GuardianPhone  string  `json:"guardianPhone" validate:"omitempty,min=7,max=20"`
	Course         string  `json:"course"`
	Institution    string  `json:"institution"`
	EnrollmentDate string  `json:"enrollmentDate" validate:"omitempty,datetime=2006-01-02"`
	BaseMonthlyFee float64 `json:"baseMonthlyFee" validate:"gte=0"`
	PaymentMethod  string  `json:"paymentMethod"`
}

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// normalized returns a copy with surrounding whitespace removed
func (f StudentForm) normalized() StudentForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.GuardianName = strings.TrimSpace(f.GuardianName)
	f.GuardianPhone = strings.TrimSpace(f.GuardianPhone)
	f.Course = strings.TrimSpace(f.Course)
	f.Institution = strings.TrimSpace(f.Institution)
	f.EnrollmentDate = strings.TrimSpace(f.EnrollmentDate)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)
	return f
}

// Validate checks the form and returns an apiclient validation error
// naming every offending field.
func (f StudentForm) Validate() error {
	err := formValidate.Struct(f.normalized())
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apiclient.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		messages = append(messages, fieldMessage(fe))
	}
	return apiclient.NewValidationError(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	default:
		return fmt.Sprintf("%s failed the '%s' check", fe.Field(), fe.Tag())
	}
}

// input builds the creation request for the given bed
func (f StudentForm) input(bedID string) apiclient.StudentInput {
	n := f.normalized()
	return apiclient.StudentInput{
		BedID:          bedID,
		Name:           n.Name,
		Email:          n.Email,
		Phone:          n.Phone,
		Address:        n.Address,
		GuardianName:   n.GuardianName,
		GuardianPhone:  n.GuardianPhone,
		Course:         n.Course,
		Institution:    n.Institution,
		EnrollmentDate: n.EnrollmentDate,
		BaseMonthlyFee: n.BaseMonthlyFee,
		PaymentMethod:  n.PaymentMethod,
	}
}
