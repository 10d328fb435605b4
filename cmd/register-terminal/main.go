package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/cisnerospos/posgw/internal/config"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/register-terminal/main.go <terminal-name> <api-key>")
		fmt.Println("Example: go run cmd/register-terminal/main.go \"Caja 1\" \"caja1-api-key-12345\"")
		os.Exit(1)
	}

	terminalName := os.Args[1]
	apiKey := os.Args[2]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	// Register terminal
	terminal := &domain.Terminal{
		Name:       terminalName,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}

	err = repos.Terminal.Create(context.Background(), terminal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register terminal: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Terminal registered successfully!\n\n")
	fmt.Printf("Terminal ID: %s\n", terminal.ID.String())
	fmt.Printf("Terminal Name: %s\n", terminal.Name)
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nSend this API key with every checkout request:\n")
	fmt.Printf("X-Terminal-Key: %s\n", apiKey)
}
