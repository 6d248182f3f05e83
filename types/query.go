package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type QueryParams struct {
	SessionID string        `json:"session_id" validate:"required,uuid4"`
	Question  string        `json:"question" validate:"required"`
	History   []ChatMessage `json:"history" validate:"dive"`
}

type ExportParams struct {
	History []ChatMessage `json:"history" validate:"dive"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *QueryParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *ExportParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
