package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Category
	}{
		{"empty", "", Normal},
		{"plain question", "Will the city finish the new stadium on time?", Normal},
		{"crypto price", "Will Bitcoin price exceed $150,000 by June?", Gambling},
		{"price threshold", "Will ETH close above $5,000 on Friday?", Gambling},
		{"sports spread", "Will the Chiefs cover the spread on Sunday?", Gambling},
		{"weather", "Will the temperature in NYC exceed 100F in July?", Gambling},
		{"ceo departure", "Will the OpenAI CEO resign before 2027?", HighInsider},
		{"fda decision", "Will the FDA approve the new obesity drug by Q3?", HighInsider},
		{"model release", "Will GPT-6 be released before September?", HighInsider},
		{"election", "Will the incumbent win the presidential election?", HighInsider},
		{"geopolitics", "Will there be a ceasefire agreement by March?", HighInsider},
		{"token listing", "Will the token get a Binance listing this quarter?", HighInsider},
		{"mundane", "Will it be the most watched stream of the year?", Normal},
		{"case insensitive", "WILL THE MERGER CLOSE THIS YEAR?", HighInsider},
		// Gambling wins even when insider keywords are also present.
		{"gambling short circuit", "Will Bitcoin price hit an all-time high after the ETF approval?", Gambling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.question); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.question, got, tt.want)
			}
		})
	}
}
