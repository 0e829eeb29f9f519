package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

// newValidator returns a validator reporting fields by their json names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("shipping_method", func(fl validator.FieldLevel) bool {
		return domain.ShippingMethod(fl.Field().String()).IsValid()
	})
	return v
}

// validationError converts validator output into *errors.ErrValidation
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &errors.ErrValidation{Message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &errors.ErrValidation{Message: "validation failed", Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "shipping_method":
		return "must be one of air, sea, standard"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// fieldChecks accumulates checks the struct tags cannot express
type fieldChecks map[string]string

func (c fieldChecks) nonNegative(field string, v *decimal.Decimal) {
	if v != nil && v.IsNegative() {
		c[field] = "must not be negative"
	}
}

func (c fieldChecks) cargoBoxes(boxes []domain.CargoBox) {
	for _, b := range boxes {
		if !b.Length.IsPositive() || !b.Width.IsPositive() || !b.Height.IsPositive() {
			c["cargo_boxes"] = "box dimensions must be positive"
			return
		}
		if b.Quantity < 1 {
			c["cargo_boxes"] = "box quantity must be at least 1"
			return
		}
	}
}

func (c fieldChecks) err() error {
	if len(c) == 0 {
		return nil
	}
	return &errors.ErrValidation{Message: "validation failed", Fields: c}
}

// pickMode returns the one supplied mode payload. Supplying more than one is
// a validation error.
func pickMode(sea *domain.SeaDetails, air *domain.AirDetails, ground *domain.GroundDetails) (domain.ModeDetails, error) {
	var out []domain.ModeDetails
	if sea != nil {
		out = append(out, sea)
	}
	if air != nil {
		out = append(out, air)
	}
	if ground != nil {
		out = append(out, ground)
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return nil, &errors.ErrValidation{
			Message: "only one of sea, air or ground may be supplied",
			Fields:  map[string]string{"mode": "multiple mode payloads supplied"},
		}
	}
}

// checkModeMatches rejects a payload for a mode other than the shipment's
func checkModeMatches(method domain.ShippingMethod, mode domain.ModeDetails) error {
	if mode == nil || mode.Method() == method.Normalize() {
		return nil
	}
	return &errors.ErrValidation{
		Message: "mode details do not match the shipping method",
		Fields: map[string]string{
			string(mode.Method()): "shipment uses " + string(method.Normalize()) + " shipping",
		},
	}
}
