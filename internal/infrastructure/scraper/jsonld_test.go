package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseJSONLD(t *testing.T) {
	t.Run("graph wrapper with product node", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@graph": [
			{"@type": "BreadcrumbList"},
			{"@type": "Product", "name": "Graph Widget",
			 "offers": {"price": 12.5, "priceCurrency": "GBP"}}
		]}
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, "Graph Widget", extraction.Title)
		assert.Equal(t, 12.5, extraction.Price.Amount)
		assert.Equal(t, "GBP", extraction.Price.Currency)
	})

	t.Run("array of nodes picks the product", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		[{"@type": "WebSite"}, {"@type": "Product", "name": "Array Widget"}]
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, "Array Widget", extraction.Title)
	})

	t.Run("type as array of strings", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@type": ["Product", "IndividualProduct"], "name": "Typed Widget"}
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, "Typed Widget", extraction.Title)
	})

	t.Run("offer array uses the first offer", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@type": "Product", "name": "Multi Offer",
		 "offers": [{"price": "9.99", "priceCurrency": "USD"}, {"price": "11.99"}]}
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, 9.99, extraction.Price.Amount)
		assert.Equal(t, "USD", extraction.Price.Currency)
	})

	t.Run("aggregate offer falls back to lowPrice", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@type": "Product", "name": "Ranged",
		 "offers": {"lowPrice": "5.00", "priceCurrency": "EUR"}}
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, 5.0, extraction.Price.Amount)
	})

	t.Run("image object nodes", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@type": "Product", "name": "Pictured",
		 "image": [{"@type": "ImageObject", "url": "https://cdn.example/a.jpg"}, "https://cdn.example/b.jpg"]}
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, []string{"https://cdn.example/a.jpg", "https://cdn.example/b.jpg"}, extraction.Images)
	})

	t.Run("rating count falls back to reviewCount", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@type": "Product", "name": "Rated",
		 "aggregateRating": {"ratingValue": 4.2, "reviewCount": "87"}}
		</script></head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		require.NotNil(t, extraction.Rating)
		assert.Equal(t, 4.2, extraction.Rating.Value)
		assert.Equal(t, 87, extraction.Rating.Count)
	})

	t.Run("no product markup returns nil", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head><script type="application/ld+json">
		{"@type": "WebSite", "name": "Shop"}
		</script></head></html>`)

		assert.Nil(t, parseJSONLD(doc))
	})

	t.Run("malformed json is skipped", func(t *testing.T) {
		doc := docFromHTML(t, `<html><head>
		<script type="application/ld+json">{not json</script>
		<script type="application/ld+json">{"@type": "Product", "name": "Second Block"}</script>
		</head></html>`)

		extraction := parseJSONLD(doc)
		require.NotNil(t, extraction)
		assert.Equal(t, "Second Block", extraction.Title)
	})
}
