// Package collate turns display strings into collation keys: accent and
// case insensitive strings that can be compared, sorted and searched with
// plain byte operations.
//
// A key brackets every rune with a '.' so a substring match on keys can only
// succeed on whole characters:
//
//	Key("The Beatles") // ".b.e.a.t.l.e.s."
//	Key("Sigur Rós")   // ".s.i.g.u.r. .r.o.s."
package collate

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator is the key of a single space. Splitting a key on Separator
// yields the keys of the individual words.
const Separator = " "

const mark = '.'

var (
	// punctuation is dropped before keying
	punctuation = regexp.MustCompile(`[\[\]()"'.,?!]`)
	// whitespace runs collapse to a single space
	whitespace = regexp.MustCompile(`\s+`)
)

// Keyer produces collation keys for one locale. A Keyer is safe for
// concurrent use.
type Keyer struct {
	lang language.Tag
}

// New creates a Keyer that lowercases with the rules of lang
func New(lang language.Tag) *Keyer {
	return &Keyer{lang: lang}
}

// Key returns the collation key for s, or "" when nothing remains after
// normalization.
func (k *Keyer) Key(s string) string {
	name := normalizeArticles(k.flatten(strings.TrimSpace(s)))
	name = punctuation.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name) * 2)
	b.WriteRune(mark)
	for _, r := range name {
		b.WriteRune(r)
		b.WriteRune(mark)
	}
	return b.String()
}

// Tokens splits a search constraint into key tokens. Each token is a
// substring that must appear in the concatenated keys of a matching row.
func (k *Keyer) Tokens(constraint string) []string {
	key := k.Key(constraint)
	if key == "" {
		return nil
	}
	return strings.Split(key, Separator)
}

// flatten strips accents and lowercases. Casers and chains carry state, so
// a new chain is built per call.
func (k *Keyer) flatten(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Lower(k.lang), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeArticles drops a leading article and a trailing ", the" so
// "The Beatles" and "Beatles, The" share a key.
func normalizeArticles(name string) string {
	for _, article := range []string{"the ", "an ", "a "} {
		if strings.HasPrefix(name, article) {
			name = name[len(article):]
			break
		}
	}
	return strings.TrimSuffix(name, ", the")
}

// DefaultLanguage is used when no locale is configured
var DefaultLanguage = language.Und

var defaultKeyer = New(DefaultLanguage)

// Key returns the collation key for s using a shared Keyer
func Key(s string) string {
	return defaultKeyer.Key(s)
}
