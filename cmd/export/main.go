// Package main exports tracked wallets' swap legs to CSV files, one file
// per wallet, optionally persisting the legs to PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/extract"
	"solana-wallet-pnl/internal/helius"
	"solana-wallet-pnl/internal/reporting"
	"solana-wallet-pnl/internal/storage/migrations"
	"solana-wallet-pnl/internal/storage/postgres"
	"solana-wallet-pnl/internal/wallets"
)

// Export crawls deeper than the portfolio report.
const defaultExportPages = 20

func main() {
	outputDir := flag.String("output-dir", "exports", "Output directory for CSV files")
	pages := flag.Int("pages", defaultExportPages, "Transaction history pages to crawl per wallet")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling...\n", sig)
		cancel()
	}()

	cfg, err := wallets.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Wallets) == 0 {
		log.Fatalf("no wallets configured: set %s or %s", wallets.EnvWallets, wallets.EnvWalletsFile)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	chain := helius.NewClient(cfg.HeliusAPIKey)
	extractor := extract.NewExtractor()

	var legStore *postgres.SwapLegStore
	if cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.Fatalf("postgres migrations: %v", err)
		}
		legStore = postgres.NewSwapLegStore(pool)
	}

	failed := 0
	for _, wallet := range cfg.Wallets {
		if ctx.Err() != nil {
			break
		}
		if err := exportWallet(ctx, chain, extractor, legStore, wallet, *pages, *outputDir); err != nil {
			log.Printf("wallet %s: %v", wallet, err)
			failed++
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func exportWallet(ctx context.Context, chain *helius.Client, extractor *extract.Extractor, legStore *postgres.SwapLegStore, wallet string, pages int, outputDir string) error {
	txs, err := chain.FetchAllTransactions(ctx, wallet, helius.DefaultTxPageLimit, pages)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	var legs []*domain.SwapLeg
	for _, ev := range extractor.ExtractSwapEvents(txs, wallet) {
		legs = append(legs, ev.Legs()...)
	}

	if legStore != nil && len(legs) > 0 {
		if err := legStore.InsertBulk(ctx, legs); err != nil {
			// Duplicates from a re-export are expected; anything else is not.
			log.Printf("wallet %s: persist legs: %v", wallet, err)
		}
	}

	path := filepath.Join(outputDir, wallet+".csv")
	if err := os.WriteFile(path, []byte(reporting.RenderLegsCSV(legs)), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("Exported %d legs from %d transactions for %s -> %s\n", len(legs), len(txs), wallet, path)
	return nil
}
