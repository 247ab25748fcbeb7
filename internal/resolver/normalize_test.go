package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Mumbai Indians", "mumbai indians"},
		{"periods become spaces", "A.B. de Villiers", "a b de villiers"},
		{"hyphens become spaces", "Jean-Paul Duminy", "jean paul duminy"},
		{"non breaking space", "Chennai Super Kings", "chennai super kings"},
		{"collapse whitespace", "  Royal   Challengers \t Bangalore ", "royal challengers bangalore"},
		{"zero width joiner", "RG‍Sharma", "rg sharma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", "CSK", "A.B. de Villiers", "  Rising   Pune Supergiant ",
		"head to‍head", "Kings XI Punjab",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestInitialsKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"single token", "Dhoni", "dhoni"},
		{"two tokens", "Rohit Sharma", "r sharma"},
		{"three tokens", "Rohit Gurunath Sharma", "rg sharma"},
		{"punctuation stripped", "A.B. de Villiers", "abd villiers"},
		{"digits stripped", "Player 7 Kumar", "p kumar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialsKey(tt.input))
		})
	}
}
