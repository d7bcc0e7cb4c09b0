package shop

// Match is the closest shop to a reported position, as returned by the
// spatial nearest-neighbor query. It is derived per event and never
// persisted on its own.
type Match struct {
	ShopID         int     `json:"shop_id"`
	Name           string  `json:"shop_name"`
	Category       string  `json:"category"`
	DistanceMeters float64 `json:"distance"`
}
