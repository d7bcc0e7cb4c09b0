package visit

import "time"

// Visit is a synthetic record of a plausible shop visit. It is created
// only when the simulation engine decides the user walked in, written
// once and never updated.
type Visit struct {
	VisitID           string    `json:"visit_id"`
	UserID            int       `json:"user_id"`
	ShopID            int       `json:"shop_id"`
	OfferID           int       `json:"offer_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DurationMinutes   int       `json:"duration_minutes"`
	OfferAccepted     bool      `json:"offer_accepted"`
	EstimatedSpending float64   `json:"estimated_spending"`
	Satisfaction      int       `json:"satisfaction"`
	DayOfWeek         int       `json:"day_of_week"`
	HourOfDay         int       `json:"hour_of_day"`
	UserAge           int       `json:"user_age"`
	UserProfession    string    `json:"user_profession"`
	UserInterests     string    `json:"user_interests"`
	ShopName          string    `json:"shop_name"`
	ShopCategory      string    `json:"shop_category"`
	CreatedAt         time.Time `json:"created_at"`
}
