// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"text/template"

	"golang.org/x/text/language"
)

// BaseLocale is the locale used when nothing better matches.
const BaseLocale = "en-US"

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	messages map[Code]string
}

// supported lists the catalog locales; BaseLocale comes first so it wins
// ties and unmatched requests.
var supported = []struct {
	locale  string
	catalog *Catalog
}{
	{BaseLocale, NewCatalog(enUS)},
	{"pt-BR", NewCatalog(ptBR)},
}

var matcher = buildMatcher()

// GetCatalog returns the catalog that best matches locale. The locale may be
// a single BCP 47 tag or an Accept-Language header value. Falls back to
// en-US when nothing matches.
func GetCatalog(locale string) *Catalog {
	return supported[match(locale)].catalog
}

func match(locale string) int {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return 0
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return 0
	}
	return idx
}

func buildMatcher() language.Matcher {
	tags := make([]language.Tag, 0, len(supported))
	for _, entry := range supported {
		tags = append(tags, language.MustParse(entry.locale))
	}
	return language.NewMatcher(tags)
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found and to the
// raw template when it fails to parse or execute.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// NewCatalog creates a catalog from a copy of messages.
func NewCatalog(messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{messages: cloned}
}
