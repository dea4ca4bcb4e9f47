// Package i18n translates user-visible diagnostic messages. Message keys
// are the English texts.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	Checking         = "Checking, please wait"
	CannotReceive    = "Cannot receive checks result"
	NotResponding    = "Not responding"
	Fastest          = "Fastest"
	Active           = "Active"
	Direct           = "Direct"
	AllChecksPassed  = "All checks passed"
	SomeChecksFailed = "Some checks failed"
	ChecksFailed     = "Checks failed"
	OutboundsChecks  = "Outbounds checks"
)

var russian = map[string]string{
	Checking:         "Проверка, пожалуйста подождите",
	CannotReceive:    "Не удалось получить результаты проверки",
	NotResponding:    "Не отвечает",
	Fastest:          "Самый быстрый",
	Active:           "Активный",
	Direct:           "Напрямую",
	AllChecksPassed:  "Все проверки пройдены",
	SomeChecksFailed: "Некоторые проверки не пройдены",
	ChecksFailed:     "Проверки не пройдены",
	OutboundsChecks:  "Проверка исходящих соединений",
}

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// Translator is the translate(key) lookup used by the diagnostic.
type Translator interface {
	T(key string) string
}

type Catalog struct {
	tag language.Tag
	p   *message.Printer
}

// New builds a translator for lang (BCP 47, e.g. "ru", "en-US").
// Unsupported languages fall back to English.
func New(lang string) *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range russian {
		_ = b.SetString(language.Russian, key, escape(msg))
		_ = b.SetString(language.English, key, escape(key))
	}

	_, idx, _ := matcher.Match(language.Make(lang))
	tag := supported[idx]
	return &Catalog{tag: tag, p: message.NewPrinter(tag, message.Catalog(b))}
}

func (c *Catalog) Language() language.Tag { return c.tag }

// T returns the translation of key, or key itself when unknown. Keys and
// texts are literal: a '%' is never read as a verb.
func (c *Catalog) T(key string) string {
	return c.p.Sprintf(message.Key(key, escape(key)))
}

func escape(s string) string { return strings.ReplaceAll(s, "%", "%%") }
