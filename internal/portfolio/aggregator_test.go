package portfolio

import (
	"context"
	"testing"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/extract"
	"solana-wallet-pnl/internal/helius"
	"solana-wallet-pnl/internal/pricing"
	"solana-wallet-pnl/internal/pricing/stub"
	"solana-wallet-pnl/internal/storage/memory"
)

// fakeSource serves canned chain data.
type fakeSource struct {
	txs      []helius.Transaction
	assets   []helius.Asset
	lamports uint64
}

func (f *fakeSource) FetchAllTransactions(context.Context, string, int, int) ([]helius.Transaction, error) {
	return f.txs, nil
}

func (f *fakeSource) FetchAllAssets(context.Context, string, int, int) ([]helius.Asset, error) {
	return f.assets, nil
}

func (f *fakeSource) GetNativeBalance(context.Context, string) uint64 {
	return f.lamports
}

func TestAggregator_Report(t *testing.T) {
	source := &fakeSource{
		txs: []helius.Transaction{{
			Signature: "tx1",
			Timestamp: 1700000000,
			Events: &helius.TransactionEvents{Swap: []helius.SwapAnnotation{{
				TokenInputs: []helius.SwapToken{{
					Mint:           pricing.USDCMint,
					RawTokenAmount: &helius.RawTokenAmount{TokenAmount: "100000000", Decimals: 6},
				}},
				TokenOutputs: []helius.SwapToken{{
					Mint:           mintA,
					RawTokenAmount: &helius.RawTokenAmount{TokenAmount: "10000000", Decimals: 6},
				}},
			}}},
		}},
		assets: []helius.Asset{
			{ID: mintA, TokenInfo: &helius.TokenInfo{Balance: 10_000_000, Decimals: 6}},
		},
		lamports: 2_000_000_000,
	}

	oracle := stub.NewOracle()
	oracle.HistoricalPrices[mintA] = 10
	oracle.SpotPrices[mintA] = 15
	oracle.SpotPrices[domain.WSOL] = 100

	resolver := pricing.NewResolver(pricing.DefaultStableSet(), oracle)
	agg := NewAggregator(source, extract.NewExtractor(), resolver)

	report, err := agg.Report(context.Background(), "w1")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	// 100 USDC bought 10 A; no sells yet.
	if report.RealizedPnLUSD != 0 {
		t.Errorf("expected realized 0, got %v", report.RealizedPnLUSD)
	}
	// 10 A at spot 15 vs cost 100.
	if report.UnrealizedPnLUSD != 50 {
		t.Errorf("expected unrealized 50, got %v", report.UnrealizedPnLUSD)
	}
	// 10 A at 15 plus 2 SOL at 100.
	if report.CurrentValueUSD != 350 {
		t.Errorf("expected current value 350, got %v", report.CurrentValueUSD)
	}
	if len(report.Positions) != 2 || report.Positions[0].ValueUSD < report.Positions[1].ValueUSD {
		t.Errorf("unexpected positions: %+v", report.Positions)
	}
	if len(report.MissingPriceMints) != 0 {
		t.Errorf("expected no missing prices, got %v", report.MissingPriceMints)
	}
}

func TestAggregator_PersistsLegs(t *testing.T) {
	source := &fakeSource{
		txs: []helius.Transaction{{
			Signature: "tx1",
			Timestamp: 1700000000,
			TokenTransfers: []helius.TokenTransfer{
				{FromUserAccount: "w1", Mint: mintA, TokenAmount: 5, Decimals: 0},
				{ToUserAccount: "w1", Mint: mintB, TokenAmount: 3, Decimals: 0},
			},
		}},
	}

	store := memory.NewSwapLegStore()
	resolver := pricing.NewResolver(pricing.DefaultStableSet(), stub.NewOracle())
	agg := NewAggregator(source, extract.NewExtractor(), resolver, WithLegStore(store))

	if _, err := agg.Events(context.Background(), "w1"); err != nil {
		t.Fatalf("Events failed: %v", err)
	}

	legs, err := store.GetByWallet(context.Background(), "w1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 persisted legs, got %d", len(legs))
	}
	if legs[0].Amount != -5 || legs[1].Amount != 3 {
		t.Errorf("unexpected legs: %+v %+v", legs[0], legs[1])
	}

	// A second crawl of the same history is a no-op, not an error.
	if _, err := agg.Events(context.Background(), "w1"); err != nil {
		t.Fatalf("re-crawl failed: %v", err)
	}
	legs, _ = store.GetByWallet(context.Background(), "w1")
	if len(legs) != 2 {
		t.Errorf("expected re-crawl to leave 2 legs, got %d", len(legs))
	}
}
