package usecase

import "DarkPull/internal/domain/models"

// Classifier decides whether a trade print executed off-exchange. A print
// counts as dark pool only when it carries the configured venue id AND a
// trade reporting facility id; either signal alone is not enough.
type Classifier struct {
	venueID int
}

// NewClassifier creates a classifier for the given dark-pool venue id.
func NewClassifier(venueID int) *Classifier {
	return &Classifier{venueID: venueID}
}

// IsDarkPool reports whether the print is a dark-pool execution.
func (c *Classifier) IsDarkPool(t *models.Trade) bool {
	if t == nil {
		return false
	}
	return t.VenueID == c.venueID && t.TRFID != nil
}
