package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"haber-radar/internal/domain/category"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{
			name:  "economy title",
			title: "Merkez Bankası faiz kararını açıkladı",
			want:  "Ekonomi",
		},
		{
			name:  "sports title with suffixes",
			title: "Galatasaray derbide Fenerbahçe'yi yendi",
			want:  "Spor",
		},
		{
			name:  "technology title",
			title: "Yapay zeka destekli yeni akıllı telefon tanıtıldı",
			want:  "Teknoloji",
		},
		{
			name:  "no keyword hits falls back",
			title: "Hava bugün güzel olacak mı acaba",
			want:  category.Fallback,
		},
		{
			name:        "single description hit is below threshold",
			title:       "Bugün yaşanan gelişmeler şaşırttı",
			description: "Borsa kapanışı",
			want:        category.Fallback,
		},
		{
			name:        "two description hits reach threshold",
			title:       "Bugün yaşanan gelişmeler şaşırttı",
			description: "Dolar ve altın yükseldi",
			want:        "Ekonomi",
		},
		{
			name:  "tie keeps first category",
			title: "Futbol ekonomisi tartışılıyor",
			want:  "Ekonomi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := category.Detect(tt.title, tt.description)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategories(t *testing.T) {
	got := category.Categories()
	assert.Len(t, got, 10)
	assert.Equal(t, "Ekonomi", got[0])
	assert.NotContains(t, got, category.Fallback)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"saglik", "Sağlık"},
		{"SPOR", "Spor"},
		{"kultur-sanat", "Kültür-Sanat"},
		{"genel", "Genel"},
		{"bilinmeyen", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, category.Canonical(tt.input), "Canonical(%q)", tt.input)
		assert.Equal(t, tt.want != "", category.IsKnown(tt.input), "IsKnown(%q)", tt.input)
	}
}
