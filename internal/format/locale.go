package format

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var presetLocales []byte

// Locale describes how amounts are displayed: the language whose number
// conventions apply, the currency and its symbol.
type Locale struct {
	Tag       language.Tag
	Currency  currency.Unit
	Symbol    string
	LakhCrore bool // group large amounts in Lacs and Cr
}

func (l Locale) String() string {
	return l.Tag.String() + "/" + l.Currency.String()
}

// symbol returns the configured symbol or the CLDR one for the language.
func (l Locale) symbol() string {
	if l.Symbol != "" {
		return l.Symbol
	}
	return message.NewPrinter(l.Tag).Sprint(currency.Symbol(l.Currency))
}

type localeFile struct {
	Locales []localeEntry `yaml:"locales"`
}

type localeEntry struct {
	Tag       string `yaml:"tag"`
	Currency  string `yaml:"currency"`
	Symbol    string `yaml:"symbol"`
	LakhCrore *bool  `yaml:"lakh_crore"`
}

// LoadLocales parses a YAML list of locale descriptors.
func LoadLocales(r io.Reader) ([]Locale, error) {
	var f localeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode locales: %w", err)
	}

	out := make([]Locale, 0, len(f.Locales))
	for i, e := range f.Locales {
		tag, err := language.Parse(e.Tag)
		if err != nil {
			return nil, fmt.Errorf("locale %d: tag %q: %w", i, e.Tag, err)
		}
		unit, err := currency.ParseISO(e.Currency)
		if err != nil {
			return nil, fmt.Errorf("locale %d: currency %q: %w", i, e.Currency, err)
		}
		loc := Locale{
			Tag:       tag,
			Currency:  unit,
			Symbol:    strings.TrimSpace(e.Symbol),
			LakhCrore: isLakhCrore(unit),
		}
		if e.LakhCrore != nil {
			loc.LakhCrore = *e.LakhCrore
		}
		out = append(out, loc)
	}
	return out, nil
}

func isLakhCrore(u currency.Unit) bool {
	return u.String() == "INR"
}

// Registry resolves locale names to descriptors.
type Registry struct {
	locales []Locale
	matcher language.Matcher
}

// NewRegistry builds a registry from the built-in presets followed by extra.
// An extra locale with the same tag as a preset replaces it.
func NewRegistry(extra ...Locale) (*Registry, error) {
	presets, err := LoadLocales(bytes.NewReader(presetLocales))
	if err != nil {
		return nil, fmt.Errorf("load preset locales: %w", err)
	}

	r := &Registry{}
	for _, l := range append(presets, extra...) {
		r.put(l)
	}
	tags := make([]language.Tag, len(r.locales))
	for i, l := range r.locales {
		tags[i] = l.Tag
	}
	r.matcher = language.NewMatcher(tags)
	return r, nil
}

func (r *Registry) put(l Locale) {
	for i, existing := range r.locales {
		if existing.Tag == l.Tag {
			r.locales[i] = l
			return
		}
	}
	r.locales = append(r.locales, l)
}

// Locales returns the registered descriptors in registration order.
func (r *Registry) Locales() []Locale {
	return append([]Locale(nil), r.locales...)
}

// Lookup returns the descriptor for a BCP 47 tag such as "en-IN".
//
// Registered tags match exactly. A tag without a region ("de") picks the
// closest registered locale. A tag with an unregistered region derives the
// region's currency from CLDR.
func (r *Registry) Lookup(name string) (Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(name))
	if err != nil {
		return Locale{}, fmt.Errorf("parse locale %q: %w", name, err)
	}
	for _, l := range r.locales {
		if l.Tag == tag {
			return l, nil
		}
	}

	if _, conf := tag.Region(); conf != language.Exact {
		_, idx, conf := r.matcher.Match(tag)
		if conf != language.No {
			return r.locales[idx], nil
		}
	}

	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return Locale{}, fmt.Errorf("no currency known for locale %q", name)
	}
	return Locale{Tag: tag, Currency: unit, LakhCrore: isLakhCrore(unit)}, nil
}
