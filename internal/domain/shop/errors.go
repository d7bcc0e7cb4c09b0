package shop

import "errors"

// ErrNoShops means the shop store is empty: there is no nearest shop to
// resolve against. A legitimate terminal outcome, not a store failure.
var ErrNoShops = errors.New("no shops in store")
