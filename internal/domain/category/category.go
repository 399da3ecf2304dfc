// Package category infers a news category from free text by scoring it
// against per-category keyword dictionaries.
package category

import (
	"haber-radar/internal/utils/text"
)

// Fallback is returned when no category scores high enough.
const Fallback = "Genel"

const (
	titleWeight       = 3
	descriptionWeight = 1
	minScore          = 2
)

type dictionary struct {
	name     string
	keywords []string
}

// dictionaries is ordered; on equal scores the earlier category wins.
// Keywords are folded and matched at word starts, so "bakan" also hits
// "bakanlığı".
var dictionaries = []dictionary{
	{"Ekonomi", []string{
		"ekonomi", "dolar", "euro", "borsa", "enflasyon", "faiz", "merkez bankasi",
		"piyasa", "ihracat", "ithalat", "vergi", "butce", "altin", "bitcoin",
		"kripto", "yatirim", "asgari ucret", "issizlik", "buyume",
	}},
	{"Spor", []string{
		"futbol", "mac", "super lig", "galatasaray", "fenerbahce", "besiktas",
		"trabzonspor", "basketbol", "voleybol", "transfer", "teknik direktor",
		"milli takim", "sampiyon", "olimpiyat", "derbi", "antrenman",
	}},
	{"Teknoloji", []string{
		"teknoloji", "yapay zeka", "yazilim", "akilli telefon", "iphone", "android",
		"internet", "siber", "robot", "uzay", "bilgisayar", "apple", "google",
		"samsung", "cip", "uydu",
	}},
	{"Sağlık", []string{
		"saglik", "hastane", "doktor", "hekim", "tedavi", "hastalik", "virus",
		"asilama", "kanser", "ilac", "salgin", "ameliyat", "beslenme",
	}},
	{"Siyaset", []string{
		"secim", "meclis", "tbmm", "milletvekili", "bakan", "cumhurbaskani",
		"chp", "ak parti", "mhp", "muhalefet", "hukumet", "belediye baskani",
		"siyaset", "kanun teklifi",
	}},
	{"Dünya", []string{
		"abd", "rusya", "ukrayna", "israil", "gazze", "avrupa birligi", "nato",
		"birlesmis milletler", "pekin", "iran", "almanya", "fransa", "ingiltere",
		"beyaz saray", "putin", "trump",
	}},
	{"Magazin", []string{
		"magazin", "unlu", "oyuncu", "sarkici", "dizi", "evlendi", "bosandi",
		"kirmizi hali", "sevgili", "konser",
	}},
	{"Kültür-Sanat", []string{
		"kultur", "sanat", "sergi", "muze", "tiyatro", "sinema", "film", "kitap",
		"roman", "festival", "opera", "bienal", "yazar",
	}},
	{"Eğitim", []string{
		"egitim", "okul", "ogrenci", "ogretmen", "universite", "lgs", "meb",
		"sinav", "mufredat", "karne", "burs",
	}},
	{"Otomotiv", []string{
		"otomotiv", "otomobil", "tesla", "togg", "surucu", "trafik",
		"elektrikli arac", "motosiklet", "sifir km",
	}},
}

// Detect returns the best matching category for title and description.
// Each keyword adds 3 points when found in the title, otherwise 1 point
// when found in the description. A winning score below 2 yields Fallback.
func Detect(title, description string) string {
	best, bestScore := Fallback, 0
	for _, d := range dictionaries {
		score := 0
		for _, kw := range d.keywords {
			switch {
			case text.CountOccurrences(title, kw) > 0:
				score += titleWeight
			case text.CountOccurrences(description, kw) > 0:
				score += descriptionWeight
			}
		}
		if score > bestScore {
			best, bestScore = d.name, score
		}
	}
	if bestScore < minScore {
		return Fallback
	}
	return best
}

// Categories returns the known category names in tie-break order.
func Categories() []string {
	out := make([]string, len(dictionaries))
	for i, d := range dictionaries {
		out[i] = d.name
	}
	return out
}

// IsKnown reports whether name is a known category or the fallback.
// The comparison ignores case and Turkish diacritics.
func IsKnown(name string) bool {
	return Canonical(name) != ""
}

// Canonical returns the canonical spelling of a category name
// ("saglik" -> "Sağlık"), or "" when the name is unknown.
func Canonical(name string) string {
	f := text.Fold(name)
	if f == "" {
		return ""
	}
	if f == text.Fold(Fallback) {
		return Fallback
	}
	for _, d := range dictionaries {
		if text.Fold(d.name) == f {
			return d.name
		}
	}
	return ""
}
