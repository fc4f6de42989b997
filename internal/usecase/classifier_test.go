package usecase

import (
	"testing"

	"DarkPull/internal/domain/models"
)

func TestIsDarkPool(t *testing.T) {
	c := NewClassifier(4)

	trfID := int64(201)
	cases := []struct {
		name  string
		trade models.Trade
		want  bool
	}{
		{"trf print on venue 4", models.Trade{VenueID: 4, TRFID: &trfID}, true},
		{"venue 4 without trf id", models.Trade{VenueID: 4}, false},
		{"trf id on lit venue", models.Trade{VenueID: 11, TRFID: &trfID}, false},
		{"lit print", models.Trade{VenueID: 11}, false},
	}
	for _, tc := range cases {
		if got := c.IsDarkPool(&tc.trade); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsDarkPoolCustomVenue(t *testing.T) {
	c := NewClassifier(9)
	trfID := int64(1)
	if c.IsDarkPool(&models.Trade{VenueID: 4, TRFID: &trfID}) {
		t.Fatalf("venue 4 should not match configured venue 9")
	}
	if !c.IsDarkPool(&models.Trade{VenueID: 9, TRFID: &trfID}) {
		t.Fatalf("venue 9 should match")
	}
}
