package registration

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	DefaultEmailSuffix   = "@gmail.com.br"
	DefaultMaxAvatarSize = 5 * 1024 * 1024

	MinTechs          = 2
	PasswordMinLength = 8
	KnowledgeMin      = 0
	KnowledgeMax      = 10
)

var DefaultImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
}

// Schema validates and normalizes registration candidates. It is safe for
// concurrent use.
type Schema struct {
	validate      *validator.Validate
	catalog       Catalog
	locale        string
	requireAvatar bool
	emailSuffix   string
	maxAvatarSize int64
	imageTypes    []string
}

type Option func(s *Schema)

func WithLocale(locale string) Option {
	return func(s *Schema) {
		s.locale = locale
	}
}

// WithRequiredAvatar makes the avatar picture mandatory.
func WithRequiredAvatar(required bool) Option {
	return func(s *Schema) {
		s.requireAvatar = required
	}
}

func WithEmailSuffix(suffix string) Option {
	return func(s *Schema) {
		s.emailSuffix = suffix
	}
}

func WithMaxAvatarSize(size int64) Option {
	return func(s *Schema) {
		s.maxAvatarSize = size
	}
}

func WithImageTypes(types ...string) Option {
	return func(s *Schema) {
		s.imageTypes = types
	}
}

func WithCatalog(c Catalog) Option {
	return func(s *Schema) {
		s.catalog = c
	}
}

func NewSchema(opts ...Option) (*Schema, error) {
	s := &Schema{
		validate:      validator.New(),
		catalog:       defaultCatalog(),
		locale:        LocaleEnglish,
		emailSuffix:   DefaultEmailSuffix,
		maxAvatarSize: DefaultMaxAvatarSize,
		imageTypes:    DefaultImageTypes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, ok := s.catalog[s.locale]; !ok {
		return nil, errors.Errorf("unsupported locale %q", s.locale)
	}
	if s.maxAvatarSize <= 0 {
		return nil, errors.Errorf("max avatar size must be positive, have %d", s.maxAvatarSize)
	}
	s.validate.RegisterTagNameFunc(jsonFieldName)
	err := s.validate.RegisterValidation("emailsuffix", func(fl validator.FieldLevel) bool {
		return strings.HasSuffix(fl.Field().String(), s.emailSuffix)
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot register emailsuffix rule")
	}
	s.validate.RegisterStructValidation(s.validateAvatar, candidate{})
	return s, nil
}

func (s *Schema) Locale() string {
	return s.locale
}

func (s *Schema) RequireAvatar() bool {
	return s.requireAvatar
}

// Validate coerces, normalizes and validates in. On failure the returned
// error is a *ValidationError carrying one message per failing field.
func (s *Schema) Validate(in Input) (UserRegistration, error) {
	fieldErrs := make(FieldErrors)
	c := candidate{
		avatar:   in.Avatar,
		Name:     TitleCase(in.Name),
		Email:    in.Email,
		Password: in.Password,
		Techs:    make([]techCandidate, len(in.Techs)),
	}
	for i, tech := range in.Techs {
		knowledge, err := CoerceKnowledge(tech.Knowledge)
		if err != nil {
			fieldErrs[fmt.Sprintf("techs.%d.knowledge", i)] = s.message("techs.knowledge.number", "")
		}
		c.Techs[i] = techCandidate{Title: tech.Title, Knowledge: knowledge}
	}

	err := s.validate.Struct(c)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return UserRegistration{}, errors.Wrap(err, "cannot validate registration")
		}
		for _, fe := range verrs {
			path := namespacePath(fe.Namespace())
			if _, exists := fieldErrs[path]; exists {
				continue
			}
			fieldErrs[path] = s.message(ruleField(path)+"."+fe.Tag(), s.ruleParam(fe.Tag(), fe.Param()))
		}
	}
	if len(fieldErrs) > 0 {
		return UserRegistration{}, &ValidationError{Errors: fieldErrs}
	}

	res := UserRegistration{
		Name:     c.Name,
		Email:    c.Email,
		Password: c.Password,
		Techs:    make([]TechEntry, 0, len(c.Techs)),
	}
	if len(c.avatar) == 1 {
		res.Avatar = c.avatar[0]
	}
	for _, tech := range c.Techs {
		res.Techs = append(res.Techs, TechEntry{Title: tech.Title, Knowledge: tech.Knowledge})
	}
	return res, nil
}

// StrengthLabel is the hint shown next to the password field, empty while
// nothing has been typed.
func (s *Schema) StrengthLabel(password string) string {
	if password == "" {
		return ""
	}
	if CheckPasswordStrength(password).Strong {
		return s.message("password.strong", "")
	}
	return s.message("password.weak", "")
}

func (s *Schema) validateAvatar(sl validator.StructLevel) {
	c := sl.Current().Interface().(candidate)
	switch {
	case len(c.avatar) == 0:
		if s.requireAvatar {
			sl.ReportError(c.avatar, "avatar", "Avatar", "required", "")
		}
		return
	case len(c.avatar) > 1:
		sl.ReportError(c.avatar, "avatar", "Avatar", "single", "")
		return
	}
	avatar := c.avatar[0]
	if avatar == nil {
		if s.requireAvatar {
			sl.ReportError(c.avatar, "avatar", "Avatar", "required", "")
		}
		return
	}
	if !s.acceptedImageType(avatar.ContentType()) {
		sl.ReportError(c.avatar, "avatar", "Avatar", "imagetype", "")
		return
	}
	if avatar.Size() > s.maxAvatarSize {
		sl.ReportError(c.avatar, "avatar", "Avatar", "maxsize", "")
	}
}

func (s *Schema) acceptedImageType(contentType string) bool {
	// parameters such as "; charset" never apply to images, drop them
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range s.imageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

func (s *Schema) ruleParam(tag, param string) string {
	switch tag {
	case "emailsuffix":
		return s.emailSuffix
	case "maxsize":
		return formatSize(s.maxAvatarSize)
	}
	return param
}

func (s *Schema) message(key, param string) string {
	return s.catalog.Message(s.locale, key, param)
}

// TitleCase collapses runs of whitespace and upper-cases the first rune of
// every token, leaving the rest of the token untouched.
func TitleCase(name string) string {
	tokens := strings.Fields(name)
	for i, token := range tokens {
		r, size := utf8.DecodeRuneInString(token)
		tokens[i] = string(unicode.ToUpper(r)) + token[size:]
	}
	return strings.Join(tokens, " ")
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func formatSize(size int64) string {
	const mb = 1024 * 1024
	if size%mb == 0 {
		return fmt.Sprintf("%dMB", size/mb)
	}
	if size%1024 == 0 {
		return fmt.Sprintf("%dKB", size/1024)
	}
	return fmt.Sprintf("%d bytes", size)
}
