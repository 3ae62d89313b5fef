package gamma

import "github.com/alanyoungcy/polymirror/internal/domain"

// APIMarket is the Gamma API market object, trimmed to the fields the
// resolver needs.
type APIMarket struct {
	ID       string     `json:"id"`
	Question string     `json:"question"`
	Slug     string     `json:"slug"`
	Tokens   []APIToken `json:"tokens"`
}

// APIToken is one outcome token of a market.
type APIToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
	Winner  bool   `json:"winner"`
}

// ToMetadata converts an APIMarket into domain metadata for the given asset
// id, matching the outcome label by token id. An asset id not present among
// the market's tokens yields the "Unknown" outcome label.
func (m *APIMarket) ToMetadata(assetID string) domain.MarketMetadata {
	md := domain.MarketMetadata{
		AssetID:  assetID,
		Question: m.Question,
		Slug:     m.Slug,
		Outcome:  "Unknown",
	}
	for _, t := range m.Tokens {
		if t.TokenID == assetID {
			md.Outcome = t.Outcome
			break
		}
	}
	return md
}
