package refiner

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

const (
	MaxRawLength = 10000
	MinMaxWords  = 10
	MaxMaxWords  = 1000
)

// refineInput is the payload after defaults have been applied.
type refineInput struct {
	Raw      string `json:"raw" validate:"required,notblank,max=10000"`
	Preset   string `json:"preset" validate:"required,oneof=concise developer teacher analyst product"`
	MaxWords int    `json:"maxWords" validate:"min=10,max=1000"`
}

var fieldMessages = map[string]string{
	"raw.required":    "Prompt cannot be empty",
	"raw.notblank":    "Prompt cannot be empty",
	"raw.max":         "Prompt too long (max 10,000 characters)",
	"preset.required": "Invalid preset, expected one of concise, developer, teacher, analyst, product",
	"preset.oneof":    "Invalid preset, expected one of concise, developer, teacher, analyst, product",
	"maxWords.min":    "Minimum 10 words",
	"maxWords.max":    "Maximum 1000 words",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// validator cannot fail registration of a well-formed tag name
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate applies defaults to payload and checks every field bound. It never
// mutates payload.
func Validate(payload models.RefinePromptPayload) (models.RefineRequest, error) {
	input := refineInput{
		Raw:      payload.Raw,
		Preset:   string(models.DefaultPreset),
		MaxWords: models.DefaultMaxWords,
	}
	if payload.Preset != nil {
		input.Preset = *payload.Preset
	}
	if payload.MaxWords != nil {
		input.MaxWords = *payload.MaxWords
	}

	if err := validate.Struct(input); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return models.RefineRequest{}, fmt.Errorf("unable to validate refine payload: %w", err)
		}
		return models.RefineRequest{}, toValidationError(fieldErrors)
	}

	return models.RefineRequest{
		Raw:      input.Raw,
		Preset:   models.Preset(input.Preset),
		MaxWords: input.MaxWords,
	}, nil
}

func toValidationError(fieldErrors validator.ValidationErrors) *ValidationError {
	details := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		message, ok := fieldMessages[fieldError.Field()+"."+fieldError.Tag()]
		if !ok {
			message = fmt.Sprintf("failed %s validation", fieldError.Tag())
		}
		details = append(details, fieldError.Field()+": "+message)
	}
	return &ValidationError{Details: details}
}
