package usecase

import (
	"errors"
	"testing"

	"github.com/buybuddy/backend/internal/domain"
)

func TestValidateURL(t *testing.T) {
	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name  string
			input string
		}{
			{"empty", ""},
			{"whitespace only", "   "},
			{"not a url", "not a url"},
			{"missing scheme", "shop.example/item/42"},
			{"relative path", "/item/42"},
			{"ftp scheme", "ftp://shop.example/item/42"},
			{"javascript scheme", "javascript:alert(1)"},
			{"scheme without host", "https://"},
			{"malformed", "http://[::1"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ValidateURL(tc.input)
				if !errors.Is(err, domain.ErrInvalidURL) {
					t.Errorf("ValidateURL(%q) error = %v, want ErrInvalidURL", tc.input, err)
				}
			})
		}
	})

	t.Run("accepts valid urls", func(t *testing.T) {
		cases := []struct {
			input string
			want  string
		}{
			{"https://shop.example/item/42", "https://shop.example/item/42"},
			{"http://shop.example", "http://shop.example"},
			{"HTTPS://shop.example/item?ref=1", "https://shop.example/item?ref=1"},
			{"  https://shop.example/item/42  ", "https://shop.example/item/42"},
		}

		for _, tc := range cases {
			got, err := ValidateURL(tc.input)
			if err != nil {
				t.Errorf("ValidateURL(%q) unexpected error: %v", tc.input, err)
				continue
			}
			if got != tc.want {
				t.Errorf("ValidateURL(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})
}
