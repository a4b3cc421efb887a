// Package i18n localizes player-facing text. Catalogs are embedded YAML
// files registered into golang.org/x/text message catalogs, one printer per
// locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the canonical source locale. Every other locale falls back
// to it for missing keys.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var localesFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
	tags    []language.Tag
	names   []string
	matcher language.Matcher
	builder *catalog.Builder
}

// Load reads every locales/*.yaml file in fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("i18n: glob catalogs: %w", err)
	}
	slices.Sort(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", path, err)
		}
		locale := strings.TrimSpace(file.Locale)
		if locale == "" {
			return nil, fmt.Errorf("i18n: %s: locale is required", path)
		}
		if _, dup := b.locales[locale]; dup {
			return nil, fmt.Errorf("i18n: %s: locale %q already loaded", path, locale)
		}
		if file.Messages == nil {
			file.Messages = map[string]string{}
		}
		b.locales[locale] = file.Messages
	}

	base, ok := b.locales[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("i18n: base locale %s is not defined", BaseLocale)
	}

	// The base locale goes first so the matcher falls back to it.
	b.names = append(b.names, BaseLocale)
	for name := range b.locales {
		if name != BaseLocale {
			b.names = append(b.names, name)
		}
	}
	slices.Sort(b.names[1:])

	b.builder = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	for _, name := range b.names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %q: %w", name, err)
		}
		b.tags = append(b.tags, tag)

		msgs := b.locales[name]
		for key, text := range base {
			if _, ok := msgs[key]; !ok {
				msgs[key] = text
			}
		}
		for key, text := range msgs {
			// Catalog entries are printf formats.
			if err := b.builder.SetString(tag, key, strings.ReplaceAll(text, "%", "%%")); err != nil {
				return nil, fmt.Errorf("i18n: register %s/%s: %w", name, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

var defaultBundle = sync.OnceValues(func() (*Bundle, error) {
	return Load(localesFS)
})

// Default returns the embedded catalogs.
func Default() (*Bundle, error) {
	return defaultBundle()
}

// Locales returns the loaded locale names, base locale first.
func (b *Bundle) Locales() []string {
	return slices.Clone(b.names)
}

// Has reports whether key exists in the base locale.
func (b *Bundle) Has(key string) bool {
	_, ok := b.locales[BaseLocale][key]
	return ok
}

// Keys returns the sorted keys of a locale.
func (b *Bundle) Keys(locale string) []string {
	msgs := b.locales[locale]
	keys := make([]string, 0, len(msgs))
	for k := range msgs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Localizer renders messages for one locale. It implements core.Localizer.
type Localizer struct {
	bundle  *Bundle
	locale  string
	printer *message.Printer
}

// Localizer returns a localizer for the closest supported match of lang.
// Unknown or unparsable languages get the base locale.
func (b *Bundle) Localizer(lang string) *Localizer {
	locale := BaseLocale
	if tag, err := language.Parse(lang); err == nil {
		_, i, conf := b.matcher.Match(tag)
		if conf != language.No {
			locale = b.names[i]
		}
	}
	return &Localizer{
		bundle:  b,
		locale:  locale,
		printer: message.NewPrinter(b.tags[slices.Index(b.names, locale)], message.Catalog(b.builder)),
	}
}

// Locale returns the resolved locale name.
func (l *Localizer) Locale() string {
	return l.locale
}

var placeholder = regexp.MustCompile(`\{(.*?)\}`)

// T renders key with {name} placeholders replaced from params. Numbers are
// formatted for the locale. A missing key renders as the key itself and a
// missing param is left in place.
func (l *Localizer) T(key string, params map[string]any) string {
	if !l.bundle.Has(key) {
		return key
	}
	text := l.printer.Sprintf(key)
	if len(params) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		v, ok := params[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return l.printer.Sprint(v)
	})
}
