package registration

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Name:     "john doe",
		Email:    "john@gmail.com.br",
		Password: "abcd1234",
		Techs: []TechInput{
			{Title: "X", Knowledge: 5.0},
			{Title: "Y", Knowledge: "7"},
		},
	}
}

func newTestSchema(t *testing.T, opts ...Option) *Schema {
	t.Helper()
	s, err := NewSchema(opts...)
	require.NoError(t, err)
	return s
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok, "want *ValidationError, have %T", err)
	return vErr.Errors
}

func TestValidateAcceptsAndNormalizes(t *testing.T) {
	s := newTestSchema(t)
	reg, err := s.Validate(validInput())
	require.NoError(t, err)

	want := UserRegistration{
		Name:     "John Doe",
		Email:    "john@gmail.com.br",
		Password: "abcd1234",
		Techs: []TechEntry{
			{Title: "X", Knowledge: 5},
			{Title: "Y", Knowledge: 7},
		},
	}
	if diff := cmp.Diff(want, reg); diff != "" {
		t.Errorf("normalized registration mismatch (-want +have):\n%s", diff)
	}
}

func TestValidateRejectsEmailSuffix(t *testing.T) {
	s := newTestSchema(t)
	in := validInput()
	in.Email = "john@gmail.com"
	_, err := s.Validate(in)
	errs := fieldErrors(t, err)
	assert.Equal(t, FieldErrors{"email": "E-mail required end with @gmail.com.br"}, errs)
}

func TestValidateEmailRules(t *testing.T) {
	s := newTestSchema(t)
	cases := map[string]string{
		"":                   "E-mail is required",
		"not-an-email":       "E-mail format incorrect.",
		"john@yahoo.com":     "E-mail required end with @gmail.com.br",
		"john@gmail.com.brx": "E-mail required end with @gmail.com.br",
	}
	for email, wantMsg := range cases {
		in := validInput()
		in.Email = email
		_, err := s.Validate(in)
		errs := fieldErrors(t, err)
		assert.Equal(t, wantMsg, errs["email"], "email %q", email)
	}
}

func TestValidateTechsMinLength(t *testing.T) {
	s := newTestSchema(t)
	in := validInput()
	in.Techs = in.Techs[:1]
	_, err := s.Validate(in)
	errs := fieldErrors(t, err)
	assert.Equal(t, "Insert at least 2 technologies.", errs["techs"])

	in.Techs = nil
	_, err = s.Validate(in)
	errs = fieldErrors(t, err)
	assert.Contains(t, errs, "techs")
}

func TestValidateTechEntries(t *testing.T) {
	s := newTestSchema(t)
	in := validInput()
	in.Techs = []TechInput{
		{Title: "", Knowledge: 3.0},
		{Title: "Go", Knowledge: "11"},
		{Title: "Rust", Knowledge: -1.0},
		{Title: "Zig", Knowledge: "abc"},
	}
	_, err := s.Validate(in)
	errs := fieldErrors(t, err)
	assert.Equal(t, FieldErrors{
		"techs.0.title":     "Title is required.",
		"techs.1.knowledge": "Max rate is 10",
		"techs.2.knowledge": "Min rate is 0",
		"techs.3.knowledge": "Expected number, received nan",
	}, errs)

	msg, ok := errs.Get("techs[1].knowledge")
	assert.True(t, ok)
	assert.Equal(t, "Max rate is 10", msg)
}

func TestValidateKnowledgeBoundaries(t *testing.T) {
	s := newTestSchema(t)
	for _, k := range []interface{}{0.0, 10.0, "0", "10", "", nil, " 4.5 "} {
		in := validInput()
		in.Techs[0].Knowledge = k
		_, err := s.Validate(in)
		assert.NoError(t, err, "knowledge %#v", k)
	}
}

func TestValidatePassword(t *testing.T) {
	s := newTestSchema(t)
	cases := map[string]string{
		"":        "Password is required",
		"a":       "Min 8 characters required",
		"abc1234": "Min 8 characters required",
	}
	for password, wantMsg := range cases {
		in := validInput()
		in.Password = password
		_, err := s.Validate(in)
		errs := fieldErrors(t, err)
		assert.Equal(t, wantMsg, errs["password"], "password %q", password)
	}
}

func TestValidateName(t *testing.T) {
	s := newTestSchema(t)
	for _, name := range []string{"", "   ", "\t\n"} {
		in := validInput()
		in.Name = name
		_, err := s.Validate(in)
		errs := fieldErrors(t, err)
		assert.Equal(t, "Name is required.", errs["name"])
	}
}

func TestValidateAvatar(t *testing.T) {
	png := NewFile("me.png", "image/png", []byte("png-bytes"))
	gif := NewFile("me.gif", "image/gif", []byte("gif-bytes"))
	big := NewFile("big.jpg", "image/jpeg", make([]byte, DefaultMaxAvatarSize+1))
	exact := NewFile("exact.webp", "image/webp", make([]byte, DefaultMaxAvatarSize))

	optional := newTestSchema(t)
	required := newTestSchema(t, WithRequiredAvatar(true))

	cases := []struct {
		name    string
		schema  *Schema
		files   []File
		wantMsg string
	}{
		{"optional absent", optional, nil, ""},
		{"required absent", required, nil, "Profile picture is required."},
		{"accepted png", required, []File{png}, ""},
		{"exact size limit", optional, []File{exact}, ""},
		{"wrong type", optional, []File{gif}, "Invalid image format."},
		{"too big", optional, []File{big}, "Max file size is 5MB"},
		{"two files", optional, []File{png, png}, "Only one profile picture is allowed."},
	}
	for _, tc := range cases {
		in := validInput()
		in.Avatar = tc.files
		reg, err := tc.schema.Validate(in)
		if tc.wantMsg == "" {
			assert.NoError(t, err, tc.name)
			if len(tc.files) == 1 {
				assert.Equal(t, tc.files[0], reg.Avatar, tc.name)
			}
			continue
		}
		errs := fieldErrors(t, err)
		assert.Equal(t, FieldErrors{"avatar": tc.wantMsg}, errs, tc.name)
	}
}

func TestValidatePortugueseMessages(t *testing.T) {
	s := newTestSchema(t, WithLocale(LocalePortuguese))
	in := validInput()
	in.Email = "john@gmail.com"
	in.Techs = in.Techs[:1]
	_, err := s.Validate(in)
	errs := fieldErrors(t, err)
	assert.Equal(t, "O e-mail precisa terminar com @gmail.com.br", errs["email"])
	assert.Equal(t, "Insira pelo menos 2 tecnologias.", errs["techs"])
}

func TestValidateCustomSuffix(t *testing.T) {
	s := newTestSchema(t, WithEmailSuffix("@example.org"))
	in := validInput()
	_, err := s.Validate(in)
	errs := fieldErrors(t, err)
	assert.Equal(t, "E-mail required end with @example.org", errs["email"])

	in.Email = "jane@example.org"
	_, err = s.Validate(in)
	assert.NoError(t, err)
}

func TestNewSchemaRejectsUnknownLocale(t *testing.T) {
	_, err := NewSchema(WithLocale("de"))
	assert.Error(t, err)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: FieldErrors{"techs": "x", "email": "y"}}
	assert.Equal(t, "registration: invalid fields: email, techs", err.Error())
}

func TestStrengthLabel(t *testing.T) {
	s := newTestSchema(t)
	assert.Equal(t, "", s.StrengthLabel(""))
	assert.Equal(t, "Not a strong password", s.StrengthLabel("abcd1234"))
	assert.Equal(t, "Strong password", s.StrengthLabel("Abcd123!"))
}

func TestDescribe(t *testing.T) {
	s := newTestSchema(t)
	desc := s.Describe(LocalePortuguese)
	assert.Equal(t, LocalePortuguese, desc.Locale)
	assert.Equal(t, 2, desc.MinTechs)
	assert.Equal(t, int64(DefaultMaxAvatarSize), desc.MaxAvatarBytes)
	assert.Equal(t, "Insira pelo menos 2 tecnologias.", desc.Messages["techs.min"])
	assert.True(t, strings.HasSuffix(desc.Messages["email.emailsuffix"], "@gmail.com.br"))

	fallback := s.Describe("xx")
	assert.Equal(t, LocaleEnglish, fallback.Locale)
	assert.Equal(t, "Max rate is 10", fallback.Messages["techs.knowledge.lte"])
}
