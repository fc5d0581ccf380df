package gammaapi

// Market represents a Gamma API market
type Market struct {
	ID            string  `json:"id"`
	ConditionID   string  `json:"conditionId"`
	Slug          string  `json:"slug"`
	Question      string  `json:"question"`
	EndDate       string  `json:"endDate"`
	Category      string  `json:"category"`
	VolumeNum     float64 `json:"volumeNum"`
	LiquidityNum  float64 `json:"liquidityNum"`
	Active        bool    `json:"active"`
	Closed        bool    `json:"closed"`
	Outcomes      string  `json:"outcomes"`      // JSON array, e.g. ["Yes","No"]
	OutcomePrices string  `json:"outcomePrices"` // JSON array, e.g. ["0.98","0.02"]
}
