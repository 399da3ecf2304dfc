// Package content decides whether a candidate feed item is real news.
// It rejects spam, footer and navigation boilerplate, malformed titles and
// garbled encodings before an item can enter the pipeline.
package content

import (
	"regexp"
	"strings"
	"unicode"

	"haber-radar/internal/utils/text"
)

const (
	MinTitleRunes = 15
	MaxTitleRunes = 300

	// maxForeignRatio is the share of title runes allowed outside the
	// accepted character set before the title is treated as garbled.
	maxForeignRatio = 0.30
)

// Rejection rules, reported by RejectionError.Rule and used as metric labels.
const (
	RuleSpam        = "spam"
	RuleTitleLength = "title_length"
	RuleBoilerplate = "boilerplate"
	RuleURLTitle    = "url_title"
	RuleDateTitle   = "date_title"
	RuleSourceName  = "source_name"
	RuleGarbled     = "garbled"
)

// RejectionError explains why an item was rejected.
type RejectionError struct {
	Rule string
}

func (e *RejectionError) Error() string {
	return "content rejected: " + e.Rule
}

// Term lists are folded (lowercase, no Turkish diacritics).
var spamTerms = []string{
	"casino",
	"deneme bonusu",
	"bedava bonus",
	"bonus veren",
	"bahis siteleri",
	"kacak bahis sitesi",
	"slot oyun",
	"escort",
	"viagra",
	"hizli kredi",
	"tikla kazan",
	"evden para kazan",
}

var boilerplatePhrases = []string{
	"tum haklari saklidir",
	"all rights reserved",
	"copyright",
	"©",
	"gizlilik politikasi",
	"gizlilik sozlesmesi",
	"cerez politikasi",
	"privacy policy",
	"kullanim kosullari",
	"kvkk",
	"aydinlatma metni",
	"devamini oku",
	"devami icin tiklayin",
	"haberin devami",
	"read more",
	"abone ol",
	"bizi takip edin",
	"iletisim formu",
	"kunye",
	"site haritasi",
	"reklam alani",
	"sponsorlu icerik",
	"ana sayfa",
	"anasayfa",
}

var sourceNames = map[string]struct{}{
	"hurriyet":             {},
	"milliyet":             {},
	"sabah":                {},
	"sozcu":                {},
	"cumhuriyet":           {},
	"cumhuriyet gazetesi":  {},
	"haberturk":            {},
	"ntv":                  {},
	"cnn turk":             {},
	"trt haber":            {},
	"bbc turkce":           {},
	"anadolu ajansi":       {},
	"dunya gazetesi":       {},
	"yeni safak":           {},
	"google news":          {},
	"google haberler":      {},
	"son dakika":           {},
	"son dakika haberleri": {},
	"gundem haberleri":     {},
	"ekonomi haberleri":    {},
	"spor haberleri":       {},
	"teknoloji haberleri":  {},
	"dunya haberleri":      {},
	"magazin haberleri":    {},
}

var dateOnlyTitle = regexp.MustCompile(
	`^\d{1,2}\s+(ocak|subat|mart|nisan|mayis|haziran|temmuz|agustos|eylul|ekim|kasim|aralik)\s+\d{4}$`,
)

// IsValidNews reports whether title and description describe a real news item.
func IsValidNews(title, description string) bool {
	return Validate(title, description) == nil
}

// Validate applies the rejection rules in order and returns a
// *RejectionError naming the first rule that failed, or nil.
// Boilerplate phrases are only checked in the title.
func Validate(title, description string) error {
	title = strings.TrimSpace(title)
	foldedTitle := text.Fold(title)
	combined := foldedTitle + " " + text.Fold(description)

	for _, term := range spamTerms {
		if strings.Contains(combined, term) {
			return &RejectionError{Rule: RuleSpam}
		}
	}

	n := text.CountRunes(title)
	if n < MinTitleRunes || n > MaxTitleRunes {
		return &RejectionError{Rule: RuleTitleLength}
	}

	for _, phrase := range boilerplatePhrases {
		if strings.Contains(foldedTitle, phrase) {
			return &RejectionError{Rule: RuleBoilerplate}
		}
	}

	if strings.HasPrefix(foldedTitle, "http") || strings.HasPrefix(foldedTitle, "www.") {
		return &RejectionError{Rule: RuleURLTitle}
	}

	if dateOnlyTitle.MatchString(foldedTitle) {
		return &RejectionError{Rule: RuleDateTitle}
	}

	if _, ok := sourceNames[foldedTitle]; ok {
		return &RejectionError{Rule: RuleSourceName}
	}

	if foreignRatio(title) > maxForeignRatio {
		return &RejectionError{Rule: RuleGarbled}
	}

	return nil
}

// foreignRatio returns the share of runes in s that are not ASCII letters,
// Turkish letters, digits, whitespace or common punctuation.
func foreignRatio(s string) float64 {
	total, foreign := 0, 0
	for _, r := range s {
		total++
		if !allowedRune(r) {
			foreign++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(foreign) / float64(total)
}

func allowedRune(r rune) bool {
	switch {
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return true
	case unicode.IsSpace(r):
		return true
	case strings.ContainsRune("çğıöşüÇĞİÖŞÜâîûÂÎÛ", r):
		return true
	case strings.ContainsRune(`.,;:!?'"-()[]%&/+*#@$€₺’‘“”–—…«»`, r):
		return true
	}
	return false
}
