package validator

import (
	"fieldcheck/internal/domain"

	"github.com/go-playground/validator/v10"
)

func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("lat", validateLat)
	validate.RegisterValidation("lng", validateLng)
	validate.RegisterValidation("permission", validatePermission)
	validate.RegisterValidation("event_type", validateEventType)
}

func validateLat(fl validator.FieldLevel) bool {
	return domain.Coordinate{Lat: fl.Field().Float()}.Valid()
}

func validateLng(fl validator.FieldLevel) bool {
	return domain.Coordinate{Lng: fl.Field().Float()}.Valid()
}

func validatePermission(fl validator.FieldLevel) bool {
	_, ok := domain.ParsePermission(fl.Field().String())
	return ok
}

func validateEventType(fl validator.FieldLevel) bool {
	return domain.EventType(fl.Field().String()).Valid()
}
