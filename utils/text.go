package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var separatorReplacer = strings.NewReplacer("_", " ", "-", " ", ".", " ", "\n", " ", "\r", " ")

// diacriticStripper decomposes characters and removes their combining marks,
// so "Construcción" becomes "Construccion".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CleanText normalizes free-text fields coming from the marketplace: it strips
// diacritics, drops punctuation and non-ASCII leftovers, collapses whitespace
// and uppercases the result. Used both for display fields and for marker-phrase
// matching against scraped pages.
func CleanText(text string) string {
	text = separatorReplacer.Replace(text)

	stripped, _, err := transform.String(diacriticStripper, text)
	if err == nil {
		text = stripped
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(strings.ToUpper(b.String())), " ")
}
