package llm

import (
	"fmt"
	"strings"

	"github.com/buybuddy/backend/internal/domain"
)

// maxDescriptionChars bounds how much page text is sent to the model.
const maxDescriptionChars = 1500

const systemPrompt = `You are a shopping assistant that evaluates e-commerce products. ` +
	`Respond with a single JSON object with exactly these keys: ` +
	`"pros" (array of short strings), "cons" (array of short strings), ` +
	`"recommendation" (one or two sentences of plain text). ` +
	`Base your critique only on the product details provided.`

// buildPrompt renders the extracted fields into the user message. Fields the
// extractor could not locate are omitted rather than guessed at.
func buildPrompt(extraction *domain.RawExtraction) string {
	var b strings.Builder

	b.WriteString("Evaluate this product:\n")
	fmt.Fprintf(&b, "Title: %s\n", extraction.Title)

	if extraction.Price.Amount > 0 {
		if extraction.Price.Currency != "" {
			fmt.Fprintf(&b, "Price: %.2f %s\n", extraction.Price.Amount, extraction.Price.Currency)
		} else {
			fmt.Fprintf(&b, "Price: %.2f\n", extraction.Price.Amount)
		}
	}

	if extraction.Rating != nil {
		fmt.Fprintf(&b, "Rating: %.1f out of 5 (%d reviews)\n", extraction.Rating.Value, extraction.Rating.Count)
	}

	if desc := extraction.Description; desc != "" {
		if len(desc) > maxDescriptionChars {
			desc = desc[:maxDescriptionChars]
		}
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}

	return b.String()
}
