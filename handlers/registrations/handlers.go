// Package registrations exposes the registration form over HTTP.
package registrations

import (
	"context"
	"net/http"

	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/submission"
	"github.com/AlhimicMan/formsadvanced/wrapper"
	"github.com/pkg/errors"
)

type submitter interface {
	Submit(ctx context.Context, reg registration.UserRegistration) (submission.Result, error)
}

type Handlers struct {
	schema    *registration.Schema
	submitter submitter
}

func New(schema *registration.Schema, submitter submitter) *Handlers {
	return &Handlers{
		schema:    schema,
		submitter: submitter,
	}
}

// RegisterRoutes mounts the registration endpoints on group.
func (h *Handlers) RegisterRoutes(group *wrapper.WrapGroup) error {
	_, err := group.POST("/create", generator.HandlerParameters{
		Summary:     "Submit registration",
		Description: "Validates the form, uploads the avatar and logs the registration. Form values such as techs.0.title override the request JSON.",
		Errors: map[int]string{
			http.StatusBadRequest:          "Malformed request",
			http.StatusUnprocessableEntity: "Invalid fields, message maps field path to error",
			http.StatusBadGateway:          "Avatar upload failed",
		},
	}, h.CreateRegistration)
	if err != nil {
		return errors.Wrap(err, "cannot register create")
	}
	_, err = group.POST("/validate", generator.HandlerParameters{
		Summary: "Validate registration",
	}, h.ValidateRegistration)
	if err != nil {
		return errors.Wrap(err, "cannot register validate")
	}
	_, err = group.POST("/password-strength", generator.HandlerParameters{
		Summary: "Check password strength",
	}, h.PasswordStrength)
	if err != nil {
		return errors.Wrap(err, "cannot register password-strength")
	}
	_, err = group.GET("/schema", generator.HandlerParameters{
		Summary: "Get form constraints and messages",
	}, h.GetSchema)
	if err != nil {
		return errors.Wrap(err, "cannot register schema")
	}
	return nil
}

func toInput(name, email, password string, techs []registration.TechInput) registration.Input {
	return registration.Input{
		Name:     name,
		Email:    email,
		Password: password,
		Techs:    append([]registration.TechInput(nil), techs...),
	}
}
