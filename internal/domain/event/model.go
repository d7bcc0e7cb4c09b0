package event

import (
	"time"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/position"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/shop"
)

// Enriched is the unit written to the analytics sink: the original
// position plus whatever the pipeline could attach to it. A gated-out or
// shop-less event still becomes an Enriched record, just with zero shop
// fields and an empty notification.
//
// Invariant: NotificationText == "" implies Visited == false.
type Enriched struct {
	EventID   int64     `json:"event_id"`
	EventTime time.Time `json:"event_time"`
	UserID    int       `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	ShopID           int     `json:"shop_id,omitempty"`
	ShopName         string  `json:"shop_name,omitempty"`
	ShopCategory     string  `json:"shop_category,omitempty"`
	DistanceMeters   float64 `json:"distance_meters,omitempty"`
	NotificationText string  `json:"notification_text,omitempty"`
	Visited          bool    `json:"visited"`
}

// FromPosition starts an Enriched record from the raw fix.
func FromPosition(p position.Event) Enriched {
	return Enriched{
		EventID:   p.Offset,
		EventTime: p.Timestamp,
		UserID:    p.UserID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}

// AttachShop copies the resolved match onto the record.
func (e *Enriched) AttachShop(m shop.Match) {
	e.ShopID = m.ShopID
	e.ShopName = m.Name
	e.ShopCategory = m.Category
	e.DistanceMeters = m.DistanceMeters
}
