// Package locale holds the presentation helpers: string tables and price
// formatting. Neither ever fails; unknown input degrades to a displayable
// default.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

const DefaultLanguage = "en"

//go:embed locales/*.json
var localesFS embed.FS

// Languages lists the embedded tables in display order.
var Languages = []string{"en", "es", "fr", "de", "zh"}

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported []string
	matcher   language.Matcher
}

// NewBundle loads the embedded tables for supported. The fallback table
// must be present; other missing tables are skipped.
func NewBundle(fallback string, supported []string) (*Bundle, error) {
	const op = "locale.NewBundle"

	if fallback == "" {
		fallback = DefaultLanguage
	}
	if len(supported) == 0 {
		supported = Languages
	}
	if !slices.Contains(supported, fallback) {
		supported = append([]string{fallback}, supported...)
	}

	b := &Bundle{
		dict:     make(map[string]map[string]string, len(supported)),
		fallback: fallback,
	}
	for _, l := range supported {
		raw, err := localesFS.ReadFile(path.Join("locales", l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("%s: load locale %s: %w", op, l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%s: unmarshal %s: %w", op, l, err)
		}
		b.dict[l] = m
		b.supported = append(b.supported, l)
	}

	// The fallback goes first so that it is the matcher's default.
	tags := []language.Tag{language.Make(fallback)}
	for _, l := range b.supported {
		if l != fallback {
			tags = append(tags, language.Make(l))
		}
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func (b *Bundle) Supported() []string { return slices.Clone(b.supported) }

func (b *Bundle) Fallback() string { return b.fallback }

func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[lang]
	return ok
}

// T returns translation for key in lang, falling back to the default
// language and finally to key itself. Empty entries count as missing.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[lang]; ok {
		if v := m[key]; v != "" {
			return v
		}
	}
	if v := b.dict[b.fallback][key]; v != "" {
		return v
	}
	return key
}

// Tf translates key and substitutes {name} placeholders from pairs
// given as name, value, name, value...
func (b *Bundle) Tf(lang, key string, pairs ...string) string {
	s := b.T(lang, key)
	if len(pairs) < 2 {
		return s
	}
	oldnew := make([]string, 0, len(pairs)&^1)
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(s)
}

// Resolve chooses the best supported language for an Accept-Language
// header value.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	tag, _, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := tag.Base()
	if lang := base.String(); b.IsSupported(lang) {
		return lang
	}
	return b.fallback
}
