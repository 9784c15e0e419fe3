package registration

import (
	_ "embed"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	LocaleEnglish    = "en"
	LocalePortuguese = "pt"

	defaultMessageKey = "default"
)

//go:embed messages.yaml
var messagesYAML []byte

// Catalog holds the validation messages of every supported locale.
type Catalog map[string]map[string]string

// LoadCatalog parses a YAML document of locale -> message key -> template.
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "cannot parse message catalog")
	}
	if _, ok := c[LocaleEnglish]; !ok {
		return nil, errors.Errorf("message catalog has no %q locale", LocaleEnglish)
	}
	return c, nil
}

func defaultCatalog() Catalog {
	c, err := LoadCatalog(messagesYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Locales lists the locales present in the catalog.
func (c Catalog) Locales() []string {
	res := make([]string, 0, len(c))
	for locale := range c {
		res = append(res, locale)
	}
	return res
}

// Message renders the template stored under key, replacing {param}.
// Missing keys fall back to English and then to the locale default message.
func (c Catalog) Message(locale, key, param string) string {
	tmpl, ok := c[locale][key]
	if !ok {
		tmpl, ok = c[LocaleEnglish][key]
	}
	if !ok {
		tmpl, ok = c[locale][defaultMessageKey]
	}
	if !ok {
		tmpl = c[LocaleEnglish][defaultMessageKey]
	}
	return strings.ReplaceAll(tmpl, "{param}", param)
}
