package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/buybuddy/backend/internal/domain"
)

// ldProduct mirrors the subset of schema.org/Product markup we consume.
// Fields that sites encode inconsistently (string vs number vs object) are
// held as json.RawMessage and decoded leniently.
type ldProduct struct {
	Type            json.RawMessage `json:"@type"`
	Graph           []ldProduct     `json:"@graph"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Image           json.RawMessage `json:"image"`
	Offers          json.RawMessage `json:"offers"`
	AggregateRating *ldRating       `json:"aggregateRating"`
}

type ldOffer struct {
	Price         json.RawMessage `json:"price"`
	LowPrice      json.RawMessage `json:"lowPrice"`
	PriceCurrency string          `json:"priceCurrency"`
}

type ldRating struct {
	RatingValue json.RawMessage `json:"ratingValue"`
	RatingCount json.RawMessage `json:"ratingCount"`
	ReviewCount json.RawMessage `json:"reviewCount"`
}

// parseJSONLD scans every ld+json script block for a schema.org Product node
// and maps the first one found onto a RawExtraction. Returns nil when the
// page carries no usable Product markup.
func parseJSONLD(doc *goquery.Document) *domain.RawExtraction {
	var result *domain.RawExtraction

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if product := findProductNode([]byte(s.Text())); product != nil {
			result = mapProductNode(product)
			return false
		}
		return true
	})

	return result
}

// findProductNode decodes a script block that may hold a single node, an
// array of nodes, or an @graph wrapper, and returns the first Product node.
func findProductNode(data []byte) *ldProduct {
	var single ldProduct
	if err := json.Unmarshal(data, &single); err == nil {
		if node := productFrom(&single); node != nil {
			return node
		}
	}

	var list []ldProduct
	if err := json.Unmarshal(data, &list); err == nil {
		for i := range list {
			if node := productFrom(&list[i]); node != nil {
				return node
			}
		}
	}

	return nil
}

func productFrom(node *ldProduct) *ldProduct {
	if isProductType(node.Type) {
		return node
	}
	for i := range node.Graph {
		if isProductType(node.Graph[i].Type) {
			return &node.Graph[i]
		}
	}
	return nil
}

// isProductType handles "@type" being either a string or an array of strings.
func isProductType(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(s, "Product")
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, t := range list {
			if strings.EqualFold(t, "Product") {
				return true
			}
		}
	}
	return false
}

func mapProductNode(node *ldProduct) *domain.RawExtraction {
	extraction := &domain.RawExtraction{
		Title:       strings.TrimSpace(node.Name),
		Description: strings.TrimSpace(node.Description),
		Images:      decodeImages(node.Image),
	}

	if offer := decodeOffer(node.Offers); offer != nil {
		amount := decodeNumber(offer.Price)
		if amount == 0 {
			amount = decodeNumber(offer.LowPrice)
		}
		if amount > 0 {
			extraction.Price = domain.Price{Amount: amount, Currency: offer.PriceCurrency}
		}
	}

	if node.AggregateRating != nil {
		value := decodeNumber(node.AggregateRating.RatingValue)
		count := decodeNumber(node.AggregateRating.RatingCount)
		if count == 0 {
			count = decodeNumber(node.AggregateRating.ReviewCount)
		}
		if value > 0 {
			extraction.Rating = &domain.Rating{Value: value, Count: int(count)}
		}
	}

	return extraction
}

// decodeImages accepts a single URL string, an array of URL strings, or
// ImageObject nodes with a "url" field.
func decodeImages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var images []string
		for _, item := range list {
			var s string
			if err := json.Unmarshal(item, &s); err == nil && s != "" {
				images = append(images, s)
				continue
			}
			var obj struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(item, &obj); err == nil && obj.URL != "" {
				images = append(images, obj.URL)
			}
		}
		return images
	}

	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.URL != "" {
		return []string{obj.URL}
	}

	return nil
}

// decodeOffer accepts a single Offer or an array of Offers (first wins).
func decodeOffer(raw json.RawMessage) *ldOffer {
	if len(raw) == 0 {
		return nil
	}

	var single ldOffer
	if err := json.Unmarshal(raw, &single); err == nil && (len(single.Price) > 0 || len(single.LowPrice) > 0) {
		return &single
	}

	var list []ldOffer
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return &list[0]
	}

	return nil
}

// decodeNumber accepts a JSON number or a numeric string like "19.99".
func decodeNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parsePriceAmount(s)
	}

	return 0
}
