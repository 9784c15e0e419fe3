package form

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/pkg/errors"
)

// MaxTechs bounds how far Apply may grow the techs list from indexed keys.
const MaxTechs = 50

var (
	ErrSubmitInProgress = errors.New("form is already submitting")
	ErrUnknownField     = errors.New("unknown form field")
	ErrIndexOutOfRange  = errors.New("techs index out of range")
)

// Mode selects when field changes trigger validation.
type Mode int

const (
	// OnSubmit validates on submit, then on every change after the first submit.
	OnSubmit Mode = iota
	// OnChange validates on every change.
	OnChange
)

// SubmitFunc receives the normalized registration of a valid submit.
type SubmitFunc func(ctx context.Context, reg registration.UserRegistration) error

type Option func(c *Controller)

func WithMode(mode Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithValues seeds the controller with initial values. Seeded values are not dirty.
func WithValues(in registration.Input) Option {
	return func(c *Controller) {
		c.values = copyInput(in)
	}
}

// Controller holds the state of one registration form: field values, the
// techs list, dirty flags, current errors and the submit lifecycle.
type Controller struct {
	mu          sync.Mutex
	schema      *registration.Schema
	mode        Mode
	values      registration.Input
	dirty       map[string]bool
	errors      registration.FieldErrors
	state       State
	submitCount int
	lastErr     error
}

func New(schema *registration.Schema, opts ...Option) *Controller {
	c := &Controller{
		schema: schema,
		dirty:  make(map[string]bool),
		errors: make(registration.FieldErrors),
		state:  Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set assigns a text field. Paths are name, email, password,
// techs.N.title and techs.N.knowledge, dotted or bracketed.
func (c *Controller) Set(path, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := registration.CanonicalPath(path)
	if err := c.set(p, value, false); err != nil {
		return err
	}
	c.afterChange()
	return nil
}

// Apply sets every field present in values, growing the techs list for
// indexed keys. Unknown keys are ignored.
func (c *Controller) Apply(values url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var changed bool
	for _, key := range keys {
		if len(values[key]) == 0 {
			continue
		}
		err := c.set(registration.CanonicalPath(key), values[key][0], true)
		if errors.Is(err, ErrUnknownField) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "cannot apply %s", key)
		}
		changed = true
	}
	if changed {
		c.afterChange()
	}
	return nil
}

func (c *Controller) set(path, value string, grow bool) error {
	switch path {
	case "name":
		c.values.Name = value
	case "email":
		c.values.Email = value
	case "password":
		c.values.Password = value
	default:
		idx, field, ok := techPath(path)
		if !ok {
			return errors.Wrapf(ErrUnknownField, "field %q", path)
		}
		if idx >= len(c.values.Techs) {
			if !grow || idx >= MaxTechs {
				return errors.Wrapf(ErrIndexOutOfRange, "index %d, have %d entries", idx, len(c.values.Techs))
			}
			for len(c.values.Techs) <= idx {
				c.values.Techs = append(c.values.Techs, registration.TechInput{})
			}
		}
		if field == "title" {
			c.values.Techs[idx].Title = value
		} else {
			c.values.Techs[idx].Knowledge = value
		}
	}
	c.dirty[path] = true
	return nil
}

// SetAvatar replaces the selected avatar files; no files clears the selection.
func (c *Controller) SetAvatar(files ...registration.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.Avatar = append([]registration.File(nil), files...)
	c.dirty["avatar"] = true
	c.afterChange()
}

// AppendTech adds an entry at the end of techs and returns its index.
func (c *Controller) AppendTech(entry registration.TechInput) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.Techs = append(c.values.Techs, entry)
	c.dirty["techs"] = true
	c.afterChange()
	return len(c.values.Techs) - 1
}

// RemoveTech deletes the entry at index; the remaining entries keep their order.
func (c *Controller) RemoveTech(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.values.Techs) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, have %d entries", index, len(c.values.Techs))
	}
	techs := make([]registration.TechInput, 0, len(c.values.Techs)-1)
	techs = append(techs, c.values.Techs[:index]...)
	techs = append(techs, c.values.Techs[index+1:]...)
	c.values.Techs = techs
	c.shiftDirty(index)
	c.dirty["techs"] = true
	if len(c.errors) > 0 {
		// errors are keyed by index and would stick to the next entry
		c.revalidate()
		return nil
	}
	c.afterChange()
	return nil
}

// shiftDirty drops the dirty flags of the removed entry and moves the flags
// of later entries one index down.
func (c *Controller) shiftDirty(removed int) {
	shifted := make(map[string]bool, len(c.dirty))
	for path, dirty := range c.dirty {
		idx, field, ok := techPath(path)
		switch {
		case !ok || idx < removed:
			shifted[path] = dirty
		case idx > removed:
			shifted["techs."+strconv.Itoa(idx-1)+"."+field] = dirty
		}
	}
	c.dirty = shifted
}

func (c *Controller) afterChange() {
	if c.mode == OnChange || c.submitCount > 0 {
		c.revalidate()
	}
}

func (c *Controller) revalidate() {
	_, err := c.schema.Validate(c.values)
	var vErr *registration.ValidationError
	if errors.As(err, &vErr) {
		c.errors = vErr.Errors
		return
	}
	c.errors = make(registration.FieldErrors)
}

// Validate runs the schema against the current values and refreshes the
// error state without submitting.
func (c *Controller) Validate() registration.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revalidate()
	return copyErrors(c.errors)
}

// Submit validates the current values and, when valid, hands the normalized
// registration to fn. A Submit while another one is running returns
// ErrSubmitInProgress.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) (registration.UserRegistration, error) {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return registration.UserRegistration{}, ErrSubmitInProgress
	}
	if err := c.moveTo(Validating); err != nil {
		c.mu.Unlock()
		return registration.UserRegistration{}, err
	}
	c.submitCount++
	c.lastErr = nil
	reg, err := c.schema.Validate(c.values)
	if err != nil {
		var vErr *registration.ValidationError
		if errors.As(err, &vErr) {
			c.errors = vErr.Errors
		}
		c.lastErr = err
		_ = c.moveTo(Invalid)
		c.mu.Unlock()
		return registration.UserRegistration{}, err
	}
	c.errors = make(registration.FieldErrors)
	_ = c.moveTo(Submitting)
	c.mu.Unlock()

	err = fn(ctx, reg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		_ = c.moveTo(Failed)
		return reg, err
	}
	_ = c.moveTo(Submitted)
	return reg, nil
}

// Reset clears values, errors and dirty flags and returns to Idle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		if err := c.moveTo(Idle); err != nil {
			return err
		}
	}
	c.values = registration.Input{}
	c.dirty = make(map[string]bool)
	c.errors = make(registration.FieldErrors)
	c.submitCount = 0
	c.lastErr = nil
	return nil
}

func (c *Controller) moveTo(to State) error {
	if !c.state.canMoveTo(to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", c.state, to)
	}
	c.state = to
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error of the last submit, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) SubmitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitCount
}

func (c *Controller) Values() registration.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyInput(c.values)
}

func (c *Controller) Techs() []registration.TechInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]registration.TechInput(nil), c.values.Techs...)
}

func (c *Controller) Errors() registration.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyErrors(c.errors)
}

// Error returns the current message for a dotted or bracketed field path.
func (c *Controller) Error(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Get(path)
}

func (c *Controller) Dirty(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty[registration.CanonicalPath(path)]
}

func (c *Controller) PasswordStrength() registration.PasswordStrength {
	c.mu.Lock()
	defer c.mu.Unlock()
	return registration.CheckPasswordStrength(c.values.Password)
}

// StrengthLabel is the live hint for the current password.
func (c *Controller) StrengthLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema.StrengthLabel(c.values.Password)
}

func techPath(path string) (int, string, bool) {
	parts := strings.Split(path, ".")
	if len(parts) != 3 || parts[0] != "techs" {
		return 0, "", false
	}
	if parts[2] != "title" && parts[2] != "knowledge" {
		return 0, "", false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return 0, "", false
	}
	return idx, parts[2], true
}

func copyInput(in registration.Input) registration.Input {
	out := in
	out.Avatar = append([]registration.File(nil), in.Avatar...)
	out.Techs = append([]registration.TechInput(nil), in.Techs...)
	return out
}

func copyErrors(errs registration.FieldErrors) registration.FieldErrors {
	out := make(registration.FieldErrors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
