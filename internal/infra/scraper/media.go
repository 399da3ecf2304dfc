package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// itemImage picks the image of a feed entry in order of precedence:
// media:content / media:thumbnail, the gofeed image, image enclosures, and
// finally the first <img> of the embedded HTML. The result may be relative.
func itemImage(it *gofeed.Item) string {
	if u := mediaImage(it.Extensions); u != "" {
		return u
	}
	// gofeed copies the first <img src> of the content here, which is often
	// an inline lazy-loading placeholder.
	if it.Image != nil && it.Image.URL != "" && !isDataURI(it.Image.URL) {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") || (enc.Type == "" && looksLikeImage(enc.URL)) {
			return enc.URL
		}
	}
	for _, html := range []string{it.Content, it.Description} {
		if u := firstImgSrc(html); u != "" {
			return u
		}
	}
	return ""
}

// mediaImage reads Media RSS elements, including those nested in media:group.
func mediaImage(exts ext.Extensions) string {
	media, ok := exts["media"]
	if !ok {
		return ""
	}
	if u := mediaURL(media["content"], media["thumbnail"]); u != "" {
		return u
	}
	for _, g := range media["group"] {
		if u := mediaURL(g.Children["content"], g.Children["thumbnail"]); u != "" {
			return u
		}
	}
	return ""
}

func mediaURL(contents, thumbnails []ext.Extension) string {
	for _, c := range contents {
		u := c.Attrs["url"]
		if u == "" {
			continue
		}
		medium, typ := c.Attrs["medium"], c.Attrs["type"]
		switch {
		case medium == "image", strings.HasPrefix(typ, "image/"):
			return u
		case medium == "" && typ == "" && looksLikeImage(u):
			return u
		}
	}
	for _, t := range thumbnails {
		if u := t.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

// firstImgSrc returns the src of the first <img> in an HTML fragment.
// Lazy-loading attributes are preferred over placeholder sources.
func firstImgSrc(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var src string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"data-src", "data-original", "src"} {
			if v, ok := s.Attr(attr); ok {
				v = strings.TrimSpace(v)
				if v != "" && !strings.HasPrefix(v, "data:") {
					src = v
					return false
				}
			}
		}
		return true
	})
	return src
}

func isDataURI(u string) bool {
	return len(u) >= 5 && strings.EqualFold(u[:5], "data:")
}

func looksLikeImage(u string) bool {
	path := strings.ToLower(u)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, suffix := range []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
