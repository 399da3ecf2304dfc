package text

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// turkishSuffixes are the noun-case endings accepted after a keyword form
// ("dolar" matches "dolarin", "dolara", "dolarlar"). Anything longer is
// rejected, so "dolarsi" and "karsi" are not hits for "dolar" and "kar".
var turkishSuffixes = []string{
	"", "in", "un", "a", "e", "i",
	"da", "de", "dan", "den",
	"la", "le", "lar", "ler",
}

const (
	wordChar    = `[\p{L}\p{N}_]`
	nonWordChar = `[^\p{L}\p{N}_]`
)

var (
	matchCache sync.Map // folded keyword -> *regexp.Regexp
	countCache sync.Map // folded keyword -> *regexp.Regexp
)

// Matches reports whether text contains keyword, or one of its synonyms,
// as a whole word optionally followed by a Turkish suffix. Matching is
// case-insensitive and tolerant of missing diacritics. A blank keyword or
// text never matches.
func Matches(text, keyword string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	re := matchPattern(keyword)
	if re == nil {
		return false
	}
	return re.MatchString(Fold(text))
}

// CountOccurrences counts the non-overlapping occurrences of keyword or any
// of its synonyms in text. A hit must start at a word boundary; any word
// characters following the root are treated as part of the same hit.
func CountOccurrences(text, keyword string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	re := countPattern(keyword)
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(Fold(text), -1))
}

func matchPattern(keyword string) *regexp.Regexp {
	key := Fold(keyword)
	if key == "" {
		return nil
	}
	if re, ok := matchCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}

	var forms []string
	for _, term := range foldedTerms(keyword) {
		for _, suffix := range turkishSuffixes {
			forms = append(forms, term+regexp.QuoteMeta(suffix))
		}
	}
	re := regexp.MustCompile(`(?:^|` + nonWordChar + `)(?:` + strings.Join(forms, "|") + `)(?:$|` + nonWordChar + `)`)
	actual, _ := matchCache.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}

func countPattern(keyword string) *regexp.Regexp {
	key := Fold(keyword)
	if key == "" {
		return nil
	}
	if re, ok := countCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}

	re := regexp.MustCompile(`(?:^|` + nonWordChar + `)(?:` + strings.Join(foldedTerms(keyword), "|") + `)` + wordChar + `*`)
	actual, _ := countCache.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}

// foldedTerms returns the folded, regexp-quoted synonym set of keyword,
// longest first so that multi-word variants win over their prefixes.
// Inner whitespace matches any run of whitespace.
func foldedTerms(keyword string) []string {
	syns := SynonymsOf(keyword)
	seen := make(map[string]struct{}, len(syns))
	terms := make([]string, 0, len(syns))
	for _, s := range syns {
		f := Fold(s)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	for i, t := range terms {
		parts := strings.Fields(t)
		for k, p := range parts {
			parts[k] = regexp.QuoteMeta(p)
		}
		terms[i] = strings.Join(parts, `\s+`)
	}
	return terms
}
