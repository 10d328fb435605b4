package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/config"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-product/main.go <name>")
		fmt.Println("Example: go run cmd/find-product/main.go \"Coca Cola\"")
		fmt.Println()
		fmt.Println("Backend credentials are read from BACKEND_USERNAME and BACKEND_PASSWORD.")
		os.Exit(1)
	}

	query := strings.ToLower(os.Args[1])

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	username := os.Getenv("BACKEND_USERNAME")
	password := os.Getenv("BACKEND_PASSWORD")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "BACKEND_USERNAME and BACKEND_PASSWORD must be set")
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := backend.NewClient(cfg.Backend, logger)
	ctx := context.Background()

	result, err := client.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to log in to backend: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🔍 Searching catalog for: %s\n\n", os.Args[1])

	products, err := client.ListProducts(ctx, result.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list products: %v\n", err)
		os.Exit(1)
	}

	found := 0
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		found++
		fmt.Printf("✅ %s\n", p.Name)
		fmt.Printf("   ID: %s\n", p.ID)
		fmt.Printf("   Price: %s\n", p.Price.String())
		fmt.Printf("   Stock: %d\n\n", p.Stock)
	}

	if found == 0 {
		fmt.Printf("❌ No product matching '%s' found in the catalog.\n", os.Args[1])
		os.Exit(1)
	}

	fmt.Printf("%d product(s) matched.\n", found)
}
