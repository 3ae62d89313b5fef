package domain

// MarketMetadata maps an outcome-token asset id to human-readable market
// text. Market text never changes once created, so cached entries have
// unbounded staleness tolerance.
type MarketMetadata struct {
	AssetID  string `json:"assetId"`
	Question string `json:"question"`
	Slug     string `json:"slug"`
	Outcome  string `json:"outcome"`
}

// UnknownMarket returns the sentinel metadata used when a lookup fails or
// returns nothing. Metadata unavailability must never block trade recording.
func UnknownMarket(assetID string) MarketMetadata {
	return MarketMetadata{
		AssetID:  assetID,
		Question: "Unknown Market",
		Outcome:  "Unknown",
	}
}
