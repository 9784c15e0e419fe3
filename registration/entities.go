package registration

// Input is a registration candidate as it arrives from a client, before
// coercion and normalization. Its validate tags only describe the rules in
// the API document; Schema.Validate checks the coerced candidate.
type Input struct {
	Avatar   []File      `json:"-"`
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Techs    []TechInput `json:"techs" validate:"min=2,dive"`
}

// TechInput holds one raw techs entry. Knowledge is whatever the client sent:
// a JSON number, a numeric string, an empty string, a bool or null. The
// knowledge bounds are checked after coercion, never on the raw value.
type TechInput struct {
	Title     string      `json:"title" validate:"required"`
	Knowledge interface{} `json:"knowledge" validate:"gte=0,lte=10"`
}

// UserRegistration is a validated and normalized registration.
type UserRegistration struct {
	Avatar   File        `json:"-"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Techs    []TechEntry `json:"techs"`
}

type TechEntry struct {
	Title     string  `json:"title"`
	Knowledge float64 `json:"knowledge"`
}

// candidate is the coerced form of Input that the validator walks.
type candidate struct {
	avatar   []File
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"required,email,emailsuffix"`
	Password string          `json:"password" validate:"required,min=8"`
	Techs    []techCandidate `json:"techs" validate:"min=2,dive"`
}

type techCandidate struct {
	Title     string  `json:"title" validate:"required"`
	Knowledge float64 `json:"knowledge" validate:"gte=0,lte=10"`
}
