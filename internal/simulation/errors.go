package simulation

import "errors"

var (
	// ErrUnsupportedProvider is returned when the pool provider is not in
	// the dispatch table. Fatal for the site being simulated.
	ErrUnsupportedProvider = errors.New("simulation: unsupported pool provider")
	// ErrInvalidBTCPrice is returned when a USD conversion is required but
	// the BTC price is zero or negative.
	ErrInvalidBTCPrice = errors.New("simulation: invalid btc price")
)
