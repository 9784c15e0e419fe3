package registrations

import (
	"context"

	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/pkg/errors"
)

type ValidateRegistrationReq struct {
	Name     string                   `json:"name" validate:"required"`
	Email    string                   `json:"email" validate:"required,email"`
	Password string                   `json:"password" validate:"required,min=8"`
	Techs    []registration.TechInput `json:"techs" validate:"min=2,dive"`
}

// RegistrationView is the normalized registration without secrets.
type RegistrationView struct {
	Name  string                   `json:"name"`
	Email string                   `json:"email"`
	Techs []registration.TechEntry `json:"techs"`
}

type ValidateRegistrationRes struct {
	Valid            bool                          `json:"valid"`
	Errors           registration.FieldErrors      `json:"errors"`
	Registration     *RegistrationView             `json:"registration,omitempty"`
	PasswordStrength registration.PasswordStrength `json:"password_strength"`
}

// ValidateRegistration runs the schema without submitting, so clients can
// show field errors as the user types.
func (h *Handlers) ValidateRegistration(_ context.Context, req ValidateRegistrationReq) (ValidateRegistrationRes, error) {
	res := ValidateRegistrationRes{
		Errors:           registration.FieldErrors{},
		PasswordStrength: registration.CheckPasswordStrength(req.Password),
	}
	reg, err := h.schema.Validate(toInput(req.Name, req.Email, req.Password, req.Techs))
	if err != nil {
		var vErr *registration.ValidationError
		if !errors.As(err, &vErr) {
			return ValidateRegistrationRes{}, err
		}
		res.Errors = vErr.Errors
		return res, nil
	}
	res.Valid = true
	res.Registration = &RegistrationView{
		Name:  reg.Name,
		Email: reg.Email,
		Techs: reg.Techs,
	}
	return res, nil
}
