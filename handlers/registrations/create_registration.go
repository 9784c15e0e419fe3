package registrations

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/AlhimicMan/formsadvanced/form"
	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/submission"
	"github.com/AlhimicMan/formsadvanced/wrapper"
	"github.com/pkg/errors"
)

type CreateRegistrationReq struct {
	Avatar   []*multipart.FileHeader  `json:"-" param:"avatar"`
	Name     string                   `json:"name" validate:"required"`
	Email    string                   `json:"email" validate:"required,email"`
	Password string                   `json:"password" validate:"required,min=8"`
	Techs    []registration.TechInput `json:"techs" validate:"min=2,dive"`
}

func (h *Handlers) CreateRegistration(ctx context.Context, req CreateRegistrationReq, httpReq *http.Request) (submission.Result, error) {
	ctrl := form.New(h.schema, form.WithValues(toInput(req.Name, req.Email, req.Password, req.Techs)))
	if len(req.Avatar) > 0 {
		files := make([]registration.File, 0, len(req.Avatar))
		for _, header := range req.Avatar {
			files = append(files, registration.FileFromHeader(header))
		}
		ctrl.SetAvatar(files...)
	}
	if err := ctrl.Apply(formValues(httpReq)); err != nil {
		return submission.Result{}, wrapper.NewErrorResult(http.StatusBadRequest, err.Error())
	}

	var res submission.Result
	_, err := ctrl.Submit(ctx, func(ctx context.Context, reg registration.UserRegistration) error {
		var err error
		res, err = h.submitter.Submit(ctx, reg)
		return err
	})
	if err == nil {
		return res, nil
	}
	var vErr *registration.ValidationError
	switch {
	case errors.As(err, &vErr):
		return submission.Result{}, wrapper.NewErrorResult(http.StatusUnprocessableEntity, vErr.Errors)
	case errors.Is(err, form.ErrSubmitInProgress):
		return submission.Result{}, wrapper.NewErrorResult(http.StatusConflict, err.Error())
	case errors.Is(err, submission.ErrNoStorage):
		return submission.Result{}, wrapper.NewErrorResult(http.StatusInternalServerError, err.Error())
	}
	return submission.Result{}, wrapper.NewErrorResult(http.StatusBadGateway, err.Error())
}

// formValues returns the individual form fields sent next to the JSON
// request, which the controller applies on top of it.
func formValues(httpReq *http.Request) url.Values {
	values := url.Values{}
	var src url.Values
	if httpReq.MultipartForm != nil {
		src = httpReq.MultipartForm.Value
	} else {
		src = httpReq.PostForm
	}
	for key, vals := range src {
		if key == generator.RequestFormField {
			continue
		}
		values[key] = vals
	}
	return values
}
