package domain

import "time"

// DailyUsage is the number of prompt requests on one calendar date.
type DailyUsage struct {
	Date  string `json:"date" example:"2025-06-01"` // YYYY-MM-DD in the stats time zone
	Count int64  `json:"count" example:"3"`
}

// UsageSnapshot is derived on read from a user's prompt history and quota
// state. It is never persisted.
type UsageSnapshot struct {
	TotalRequests int64        `json:"totalRequests"`
	RequestsToday int64        `json:"requestsToday"`
	RequestLimit  int          `json:"requestLimit"`
	Remaining     int          `json:"remaining"`
	ResetAt       *time.Time   `json:"resetAt,omitempty"`
	DailyUsage    []DailyUsage `json:"dailyUsage"`
}
