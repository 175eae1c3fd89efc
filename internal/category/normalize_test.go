package category_test

import (
	"testing"

	"github.com/finpulse/finpulse/internal/category"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "food", want: category.Food},
		{in: "Groceries", want: category.Food},
		{in: "  DINING OUT  ", want: category.Food},
		{in: "Restaurants", want: category.Food},
		{in: "🍔 restaurants", want: category.Food},
		{in: "gas", want: category.Transport},
		{in: "Uber", want: category.Transport},
		{in: "rent", want: category.Housing},
		{in: "Electricity", want: category.Utilities},
		{in: "movies", want: category.Entertainment},
		{in: "clothing", want: category.Shopping},
		{in: "GYM", want: category.Health},
		{in: "tuition", want: category.Education},
		{in: "flights", want: category.Travel},
		{in: "misc", want: category.Other},
		{in: "quantum flux capacitors", want: category.Other},
		{in: "", want: ""},
		{in: "🎉🎉🎉", want: ""},
	}
	for _, tt := range tests {
		if got := category.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
