// Package classify categorizes prediction markets by their question text.
//
// Gambling markets (crypto price direction, sports spreads, weather) have no
// informational edge, so detections there are noise. Markets around corporate,
// political, or regulatory events are where a tipped-off party plausibly has
// an edge and deserve extra weight.
package classify

import "strings"

// Category is the insider-potential classification of a market.
type Category string

const (
	// Gambling markets never feed the fresh-wallet detector.
	Gambling Category = "GAMBLING"
	// HighInsider markets add a flat confidence bonus.
	HighInsider Category = "HIGH_INSIDER"
	// Normal is everything else, including empty/unknown questions.
	Normal Category = "NORMAL"
)

// gamblingKeywords short-circuit the check: any match wins no matter what
// else the question mentions.
var gamblingKeywords = []string{
	// crypto price direction
	"bitcoin price",
	"btc price",
	"eth price",
	"ethereum price",
	"solana price",
	"price of bitcoin",
	"price above",
	"price below",
	"close above",
	"close below",
	"all-time high",
	"all time high",
	"dip below",
	// sports spreads and totals
	"spread",
	"over/under",
	"over under",
	"parlay",
	"cover the",
	"win by",
	"point total",
	"first to score",
	// exogenous randomness
	"temperature",
	"rainfall",
	"snowfall",
	"inches of snow",
	"lottery",
	"powerball",
	"mega millions",
	"dice",
	"coin flip",
}

var highInsiderKeywords = []string{
	// corporate and executive
	"ceo",
	"cfo",
	"resign",
	"step down",
	"fired",
	"acquisition",
	"acquire",
	"merger",
	"ipo",
	"bankruptcy",
	"layoff",
	"earnings",
	// product and model launches
	"launch",
	"release",
	"announce",
	"unveil",
	"gpt",
	"claude",
	"gemini",
	"ai model",
	"iphone",
	// regulatory and legal
	"sec ",
	"fda",
	"approval",
	"approve",
	"lawsuit",
	"indicted",
	"indictment",
	"charges",
	"investigation",
	"ruling",
	"verdict",
	"pardon",
	"regulation",
	"etf",
	// political
	"election",
	"nominee",
	"nomination",
	"cabinet",
	"appoint",
	"president",
	"senate",
	"congress",
	"impeach",
	"executive order",
	"veto",
	"prime minister",
	// geopolitical
	"ceasefire",
	"invasion",
	"invade",
	"sanctions",
	"treaty",
	"nato",
	"military strike",
	"peace deal",
	// entertainment industry decisions
	"cast",
	"renewed",
	"cancelled",
	"host the",
	"award",
	"grammy",
	"oscar",
	// crypto protocol insiders
	"airdrop",
	"token launch",
	"mainnet",
	"hard fork",
	"listing",
	"delist",
}

// Classify categorizes a market question. Empty or unknown text is Normal.
func Classify(question string) Category {
	if question == "" {
		return Normal
	}

	q := strings.ToLower(question)

	for _, kw := range gamblingKeywords {
		if strings.Contains(q, kw) {
			return Gambling
		}
	}

	for _, kw := range highInsiderKeywords {
		if strings.Contains(q, kw) {
			return HighInsider
		}
	}

	return Normal
}
