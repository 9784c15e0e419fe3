package registrations

import (
	"context"

	"github.com/AlhimicMan/formsadvanced/registration"
)

type GetSchemaReq struct {
	Locale string `json:"locale" param:"locale,query"`
}

func (h *Handlers) GetSchema(_ context.Context, req GetSchemaReq) (registration.Description, error) {
	return h.schema.Describe(req.Locale), nil
}
