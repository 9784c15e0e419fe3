package console

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/AlhimicMan/formsadvanced/form"
	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/gookit/color"
	"github.com/pkg/errors"
)

const (
	actionAddTech = iota
	actionRemoveTech
	actionAvatar
	actionEdit
	actionSubmit
	actionQuit
)

var menuOptions = []string{
	actionAddTech:    "Add technology",
	actionRemoveTech: "Remove technology",
	actionAvatar:     "Choose profile picture",
	actionEdit:       "Edit name, e-mail and password",
	actionSubmit:     "Submit",
	actionQuit:       "Quit",
}

// Session walks a user through the registration form and submits it with
// submit once the controller accepts the values.
type Session struct {
	driver PromptDriver
	ctrl   *form.Controller
	submit form.SubmitFunc
	out    io.Writer
}

func NewSession(driver PromptDriver, ctrl *form.Controller, submit form.SubmitFunc, out io.Writer) *Session {
	return &Session{
		driver: driver,
		ctrl:   ctrl,
		submit: submit,
		out:    out,
	}
}

// Run prompts until the registration is submitted or the user quits, in
// which case ErrAborted is returned.
func (s *Session) Run(ctx context.Context) (registration.UserRegistration, error) {
	if err := s.editDetails(ctx); err != nil {
		return registration.UserRegistration{}, err
	}
	for {
		s.printTechs()
		action, err := s.driver.Select(ctx, SelectConfig{
			Message:      "What next?",
			Options:      menuOptions,
			DefaultIndex: actionAddTech,
		})
		if err != nil {
			return registration.UserRegistration{}, err
		}
		switch action {
		case actionAddTech:
			err = s.addTech(ctx)
		case actionRemoveTech:
			err = s.removeTech(ctx)
		case actionAvatar:
			err = s.chooseAvatar(ctx)
		case actionEdit:
			err = s.editDetails(ctx)
		case actionSubmit:
			reg, done, subErr := s.trySubmit(ctx)
			if done {
				return reg, nil
			}
			err = subErr
		case actionQuit:
			return registration.UserRegistration{}, ErrAborted
		default:
			err = errors.Errorf("unknown action %d", action)
		}
		if err != nil {
			return registration.UserRegistration{}, err
		}
	}
}

// Loop runs registrations one after another until the user declines to
// register another one, and returns how many were submitted.
func (s *Session) Loop(ctx context.Context) (int, error) {
	var submitted int
	for {
		if _, err := s.Run(ctx); err != nil {
			return submitted, err
		}
		submitted++
		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Register another?"})
		if err != nil {
			return submitted, err
		}
		if !again {
			return submitted, nil
		}
		if err := s.ctrl.Reset(); err != nil {
			return submitted, err
		}
	}
}

func (s *Session) editDetails(ctx context.Context) error {
	values := s.ctrl.Values()
	name, err := s.driver.Input(ctx, InputConfig{Message: "Name", Default: values.Name})
	if err != nil {
		return err
	}
	email, err := s.driver.Input(ctx, InputConfig{Message: "E-mail", Default: values.Email})
	if err != nil {
		return err
	}
	password, err := s.driver.Password(ctx, InputConfig{Message: "Password"})
	if err != nil {
		return err
	}
	if err := s.ctrl.Set("name", name); err != nil {
		return err
	}
	if err := s.ctrl.Set("email", email); err != nil {
		return err
	}
	if password != "" || values.Password == "" {
		if err := s.ctrl.Set("password", password); err != nil {
			return err
		}
	}
	if label := s.ctrl.StrengthLabel(); label != "" {
		if s.ctrl.PasswordStrength().Strong {
			s.println(color.Green.Sprint(label))
		} else {
			s.println(color.Red.Sprint(label))
		}
	}
	return nil
}

func (s *Session) addTech(ctx context.Context) error {
	title, err := s.driver.Input(ctx, InputConfig{Message: "Technology"})
	if err != nil {
		return err
	}
	knowledge, err := s.driver.Input(ctx, InputConfig{
		Message: "Knowledge",
		Help:    fmt.Sprintf("A rate from %d to %d", registration.KnowledgeMin, registration.KnowledgeMax),
	})
	if err != nil {
		return err
	}
	idx := s.ctrl.AppendTech(registration.TechInput{Title: title, Knowledge: knowledge})
	errs := s.ctrl.Validate()
	for _, field := range []string{"title", "knowledge"} {
		path := "techs." + strconv.Itoa(idx) + "." + field
		if msg, ok := errs[path]; ok {
			s.println(color.Red.Sprintf("%s: %s", path, msg))
		}
	}
	return nil
}

func (s *Session) removeTech(ctx context.Context) error {
	techs := s.ctrl.Techs()
	if len(techs) == 0 {
		s.println(color.Yellow.Sprint("No technologies to remove."))
		return nil
	}
	options := make([]string, len(techs))
	for i, tech := range techs {
		options[i] = techLine(i, tech)
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Remove which one?", Options: options})
	if err != nil {
		return err
	}
	if err := s.ctrl.RemoveTech(idx); err != nil {
		s.println(color.Red.Sprint(err.Error()))
	}
	return nil
}

func (s *Session) chooseAvatar(ctx context.Context) error {
	path, err := s.driver.Input(ctx, InputConfig{
		Message: "Profile picture path",
		Help:    "Leave empty to remove the current picture",
	})
	if err != nil {
		return err
	}
	if path == "" {
		s.ctrl.SetAvatar()
		return nil
	}
	file, err := registration.FileFromPath(path)
	if err != nil {
		s.println(color.Red.Sprint(err.Error()))
		return nil
	}
	s.ctrl.SetAvatar(file)
	return nil
}

// trySubmit reports done once the registration went through. Field errors
// and failed uploads are printed and the menu is shown again.
func (s *Session) trySubmit(ctx context.Context) (registration.UserRegistration, bool, error) {
	reg, err := s.ctrl.Submit(ctx, s.submit)
	if err == nil {
		s.println(color.Green.Sprintf("Registration of %s submitted.", reg.Name))
		return reg, true, nil
	}
	var vErr *registration.ValidationError
	if errors.As(err, &vErr) {
		for _, path := range vErr.Errors.Paths() {
			s.println(color.Red.Sprintf("%s: %s", path, vErr.Errors[path]))
		}
		return registration.UserRegistration{}, false, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return registration.UserRegistration{}, false, err
	}
	s.println(color.Red.Sprintf("Submission failed (attempt %d): %v", s.ctrl.SubmitCount(), err))
	return registration.UserRegistration{}, false, nil
}

func (s *Session) printTechs() {
	for i, tech := range s.ctrl.Techs() {
		line := techLine(i, tech)
		for _, field := range []string{"title", "knowledge"} {
			if msg, ok := s.ctrl.Error("techs." + strconv.Itoa(i) + "." + field); ok {
				line += " " + color.Red.Sprint(msg)
			}
		}
		s.println(line)
	}
}

func techLine(i int, tech registration.TechInput) string {
	knowledge := ""
	if tech.Knowledge != nil {
		knowledge = fmt.Sprint(tech.Knowledge)
	}
	return fmt.Sprintf("%d. %s (%s)", i+1, tech.Title, knowledge)
}

func (s *Session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}
