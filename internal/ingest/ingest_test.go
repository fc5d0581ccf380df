package ingest

import (
	"strings"
	"testing"

	"github.com/marketsentry/marketsentry/internal/polymarket/dataapi"
)

func TestTradeHash(t *testing.T) {
	withTx := &dataapi.Trade{
		TransactionHash: "0xdeadbeef",
		ProxyWallet:     "0xabc",
		ConditionID:     "0xcond",
		Timestamp:       1700000000,
		Size:            100,
		Price:           0.40,
	}
	if got := tradeHash(withTx); got != "0xdeadbeef" {
		t.Errorf("tradeHash with tx = %q, want the transaction hash", got)
	}

	noTx := &dataapi.Trade{
		ProxyWallet: "0xabc",
		ConditionID: "0xcond",
		Timestamp:   1700000000,
		Size:        100,
		Price:       0.40,
	}
	h1 := tradeHash(noTx)
	h2 := tradeHash(noTx)
	if h1 != h2 {
		t.Error("derived hash is not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("derived hash length = %d, want 64 hex chars", len(h1))
	}

	changed := *noTx
	changed.Price = 0.41
	if tradeHash(&changed) == h1 {
		t.Error("different trades produced the same derived hash")
	}
}

func TestCalculateNotional(t *testing.T) {
	tests := []struct {
		name  string
		trade dataapi.Trade
		want  float64
	}{
		{"usdc size preferred", dataapi.Trade{USDCSize: 1234.5, Size: 100, Price: 0.4}, 1234.5},
		{"fallback to size times price", dataapi.Trade{Size: 100, Price: 0.4}, 40},
		{"zero trade", dataapi.Trade{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateNotional(&tt.trade); got != tt.want {
				t.Errorf("calculateNotional() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShortenAddress(t *testing.T) {
	long := "0xabcdef1234567890abcdef1234567890abcdef12"
	short := shortenAddress(long)
	if !strings.HasPrefix(short, "0xabcd") || !strings.HasSuffix(short, "ef12") {
		t.Errorf("shortenAddress(%q) = %q", long, short)
	}
	if shortenAddress("0xshort") != "0xshort" {
		t.Error("short addresses should pass through unchanged")
	}
}
