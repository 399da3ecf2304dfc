// Package text provides the Turkish-aware text helpers used by the news
// pipeline: normalization, synonym expansion, whole-word keyword matching,
// occurrence counting, HTML stripping and rune-safe truncation.
package text

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Length limits in the pipeline are expressed in runes so that Turkish
// letters such as "ş" or "ğ" count as one character.
//
//	CountRunes("haber")   // 5
//	CountRunes("güneş")   // 5
//	CountRunes("")        // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate cuts s to at most max runes. It never splits a multi-byte rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}

// CollapseSpace trims s and replaces every run of whitespace with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripHTML returns the visible text of an HTML fragment with entities
// decoded and whitespace collapsed. Plain text passes through unchanged
// apart from entity decoding.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsRune(s, '<') {
		return CollapseSpace(html.UnescapeString(s))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseSpace(html.UnescapeString(s))
	}
	doc.Find("script, style, noscript").Remove()
	return CollapseSpace(doc.Text())
}

// Normalize lowercases s using Turkish casing rules ("I" -> "ı", "İ" -> "i")
// and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(strings.ToLowerSpecial(unicode.TurkishCase, s))
}

var foldReplacer = strings.NewReplacer(
	"ç", "c",
	"ğ", "g",
	"ı", "i",
	"ö", "o",
	"ş", "s",
	"ü", "u",
	"â", "a",
	"î", "i",
	"û", "u",
	"i̇", "i", // i + combining dot above
)

// Fold normalizes s and strips Turkish diacritics so that "Doların" and
// "Dolarin" compare equal. Matching and counting operate on folded text.
func Fold(s string) string {
	return CollapseSpace(foldReplacer.Replace(Normalize(s)))
}
