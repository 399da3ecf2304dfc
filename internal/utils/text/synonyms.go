package text

// synonymTable maps a canonical term to its known variants. Entries are
// stored folded (lowercase, no diacritics) so lookups are spelling tolerant.
var synonymTable = map[string][]string{
	"dolar":          {"usd", "amerikan dolari", "dolar kuru"},
	"euro":           {"eur", "avro"},
	"sterlin":        {"gbp", "ingiliz sterlini"},
	"altin":          {"gram altin", "ons altin", "xau"},
	"bitcoin":        {"btc"},
	"kripto":         {"kripto para", "kripto varlik"},
	"borsa":          {"bist", "borsa istanbul", "bist 100"},
	"enflasyon":      {"tufe", "ufe", "fiyat artisi"},
	"faiz":           {"politika faizi", "faiz orani"},
	"merkez bankasi": {"tcmb"},
	"petrol":         {"brent", "ham petrol"},
	"akaryakit":      {"benzin", "motorin"},
	"deprem":         {"sarsinti", "zelzele"},
	"secim":          {"sandik", "secimler"},
	"cumhurbaskani":  {"cumhurbaskanligi"},
	"futbol":         {"super lig"},
	"yapay zeka":     {"yz", "artificial intelligence"},
	"otomobil":       {"araba", "arac"},
	"universite":     {"yks"},
	"saglik":         {"hastane", "tedavi"},
}

// variantIndex maps every variant (and every canonical term) back to its canonical term.
var variantIndex = func() map[string]string {
	idx := make(map[string]string, len(synonymTable)*3)
	for canonical, variants := range synonymTable {
		idx[canonical] = canonical
		for _, v := range variants {
			idx[v] = canonical
		}
	}
	return idx
}()

// SynonymsOf returns the normalized keyword followed by its known synonyms.
// Lookup works in both directions: asking for a variant yields the
// canonical term and the remaining variants. The result never contains
// duplicates and always starts with the keyword itself. An empty keyword
// yields nil.
func SynonymsOf(keyword string) []string {
	norm := Normalize(keyword)
	if norm == "" {
		return nil
	}
	out := []string{norm}
	seen := map[string]struct{}{Fold(norm): {}}
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	canonical, ok := variantIndex[Fold(norm)]
	if !ok {
		return out
	}
	add(canonical)
	for _, v := range synonymTable[canonical] {
		add(v)
	}
	return out
}
