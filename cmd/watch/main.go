// Package main streams live transactions touching the tracked wallets over
// the Helius WebSocket API and logs each confirmed signature.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"solana-wallet-pnl/internal/stream"
	"solana-wallet-pnl/internal/wallets"
)

func main() {
	endpoint := flag.String("endpoint", stream.DefaultEndpoint, "Helius WebSocket endpoint")
	includeFailed := flag.Bool("include-failed", false, "Also deliver failed transactions")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
		cancel()
	}()

	cfg, err := wallets.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Wallets) == 0 {
		log.Fatalf("no wallets configured: set %s or %s", wallets.EnvWallets, wallets.EnvWalletsFile)
	}

	wsURL := fmt.Sprintf("%s/?api-key=%s", *endpoint, url.QueryEscape(cfg.HeliusAPIKey))

	client, err := stream.NewClient(ctx, wsURL, nil)
	if err != nil {
		log.Fatalf("connect stream: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeTransactions(ctx, stream.TxFilter{
		AccountInclude: cfg.Wallets,
		IncludeFailed:  *includeFailed,
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	log.Printf("watching %d wallets", len(cfg.Wallets))

	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-ch:
			if !ok {
				return
			}
			status := "confirmed"
			if notif.Failed {
				status = "failed"
			}
			log.Printf("tx %s slot=%d %s", notif.Signature, notif.Slot, status)
		}
	}
}
