// Package main computes per-wallet portfolio PnL reports: transaction
// history replayed through FIFO cost-basis accounting, valued against a
// live holdings snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solana-wallet-pnl/internal/extract"
	"solana-wallet-pnl/internal/helius"
	"solana-wallet-pnl/internal/portfolio"
	"solana-wallet-pnl/internal/pricing"
	"solana-wallet-pnl/internal/reporting"
	chstore "solana-wallet-pnl/internal/storage/clickhouse"
	"solana-wallet-pnl/internal/storage/migrations"
	"solana-wallet-pnl/internal/storage/postgres"
	"solana-wallet-pnl/internal/wallets"
)

func main() {
	topN := flag.Int("top", portfolio.DefaultTopN, "Number of top positions per report")
	pages := flag.Int("pages", portfolio.DefaultHistoryPages, "Transaction history pages to crawl per wallet")
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

	chain := helius.NewClient(cfg.HeliusAPIKey)

	var oracle pricing.Oracle = pricing.NewBirdeyeClient(cfg.BirdeyeAPIKey)
	oracle = pricing.NewCachedOracle(oracle, pricing.NewCache())

	var resolverOpts []pricing.ResolverOption
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			log.Fatalf("clickhouse: %v", err)
		}
		defer conn.Close()
		resolverOpts = append(resolverOpts, pricing.WithRecorder(chstore.NewPricePointStore(conn)))
	}
	resolver := pricing.NewResolver(pricing.DefaultStableSet(), oracle, resolverOpts...)

	aggOpts := []portfolio.AggregatorOption{
		portfolio.WithTopN(*topN),
		portfolio.WithHistoryPages(*pages),
	}
	if cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.Fatalf("postgres migrations: %v", err)
		}
		aggOpts = append(aggOpts, portfolio.WithLegStore(postgres.NewSwapLegStore(pool)))
	}

	agg := portfolio.NewAggregator(chain, extract.NewExtractor(), resolver, aggOpts...)

	failed := 0
	for _, wallet := range cfg.Wallets {
		if ctx.Err() != nil {
			break
		}
		report, err := agg.Report(ctx, wallet)
		if err != nil {
			log.Printf("wallet %s: %v", wallet, err)
			failed++
			continue
		}
		fmt.Println(reporting.RenderText(report))
	}

	if failed > 0 {
		os.Exit(1)
	}
}
