package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultLanguage is used for unknown language tags and missing keys.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

// Catalog holds the message tables of every supported language. It is read-only after
// construction.
type Catalog struct {
	messages map[string]map[string]string
}

// Load parses the embedded catalogs.
func Load() (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	c := &Catalog{messages: make(map[string]map[string]string)}
	for _, entry := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", entry.Name(), err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", entry.Name(), err)
		}
		c.messages[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = table
	}

	if _, ok := c.messages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q missing", DefaultLanguage)
	}
	return c, nil
}

// MustLoad is Load for package initialization and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages returns the supported language tags, sorted.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supports reports whether lang has its own catalog.
func (c *Catalog) Supports(lang string) bool {
	_, ok := c.messages[lang]
	return ok
}

// T returns the message for key in lang with {name} placeholders replaced from args.
// Unknown languages use the default catalog. A key missing from the catalog is
// returned unchanged.
func (c *Catalog) T(lang, key string, args map[string]string) string {
	table, ok := c.messages[lang]
	if !ok {
		table = c.messages[DefaultLanguage]
	}
	template, ok := table[key]
	if !ok {
		return key
	}
	for name, value := range args {
		template = strings.ReplaceAll(template, "{"+name+"}", value)
	}
	return template
}

// Keys returns every key of a language, sorted.
func (c *Catalog) Keys(lang string) []string {
	keys := make([]string, 0, len(c.messages[lang]))
	for k := range c.messages[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
