package registrations

import (
	"context"

	"github.com/AlhimicMan/formsadvanced/registration"
)

type PasswordStrengthReq struct {
	Password string `json:"password"`
}

type PasswordStrengthRes struct {
	Strength registration.PasswordStrength `json:"strength"`
	Label    string                        `json:"label"`
}

func (h *Handlers) PasswordStrength(_ context.Context, req PasswordStrengthReq) (PasswordStrengthRes, error) {
	return PasswordStrengthRes{
		Strength: registration.CheckPasswordStrength(req.Password),
		Label:    h.schema.StrengthLabel(req.Password),
	}, nil
}
