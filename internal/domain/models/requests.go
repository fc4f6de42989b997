package models

// Requests for the analytics HTTP endpoints. Defined in domain for
// consistency and reuse.

type OpportunitiesRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type AnalyticsRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,min=1,max=10"`
}

type SubscribeRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,min=1,max=10"`
}

type BackfillRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=10"`
	Days   int    `json:"days" default:"30" validate:"gte=1,lte=365"`
}
