package registration

import "strconv"

// Description publishes the schema constraints so clients can mirror them.
type Description struct {
	Locale             string            `json:"locale"`
	RequireAvatar      bool              `json:"require_avatar"`
	AcceptedImageTypes []string          `json:"accepted_image_types"`
	MaxAvatarBytes     int64             `json:"max_avatar_bytes"`
	EmailSuffix        string            `json:"email_suffix"`
	PasswordMinLength  int               `json:"password_min_length"`
	MinTechs           int               `json:"min_techs"`
	KnowledgeMin       int               `json:"knowledge_min"`
	KnowledgeMax       int               `json:"knowledge_max"`
	Messages           map[string]string `json:"messages"`
}

// Describe renders the constraints and messages for locale, or for the
// schema locale when locale is empty or unknown.
func (s *Schema) Describe(locale string) Description {
	if _, ok := s.catalog[locale]; !ok {
		locale = s.locale
	}
	messages := make(map[string]string, len(s.catalog[LocaleEnglish]))
	for key := range s.catalog[LocaleEnglish] {
		messages[key] = s.catalog.Message(locale, key, s.describeParam(key))
	}
	return Description{
		Locale:             locale,
		RequireAvatar:      s.requireAvatar,
		AcceptedImageTypes: s.imageTypes,
		MaxAvatarBytes:     s.maxAvatarSize,
		EmailSuffix:        s.emailSuffix,
		PasswordMinLength:  PasswordMinLength,
		MinTechs:           MinTechs,
		KnowledgeMin:       KnowledgeMin,
		KnowledgeMax:       KnowledgeMax,
		Messages:           messages,
	}
}

func (s *Schema) describeParam(key string) string {
	switch key {
	case "avatar.maxsize":
		return s.ruleParam("maxsize", "")
	case "email.emailsuffix":
		return s.emailSuffix
	case "password.min":
		return strconv.Itoa(PasswordMinLength)
	case "techs.min":
		return strconv.Itoa(MinTechs)
	case "techs.knowledge.gte":
		return strconv.Itoa(KnowledgeMin)
	case "techs.knowledge.lte":
		return strconv.Itoa(KnowledgeMax)
	}
	return ""
}
