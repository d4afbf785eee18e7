package main

import (
	"fmt"
	"os"
	"time"

	"github.com/web3realty/bot/common/environment"
	"github.com/web3realty/bot/common/version"
	"github.com/web3realty/bot/internal/bot/app"
	"github.com/web3realty/bot/internal/bot/matrix"
)

func main() {
	fmt.Printf("Web3 Realty Bot\n")
	fmt.Printf("Version: %s\n", version.Info())
	fmt.Println()

	config := loadConfig()

	// Validate required configuration
	if config.Matrix.Homeserver == "" {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_HOMESERVER is required\n")
		os.Exit(1)
	}
	if config.Matrix.UserID == "" {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_USER_ID is required\n")
		os.Exit(1)
	}
	if config.Matrix.AccessToken == "" {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_ACCESS_TOKEN is required\n")
		os.Exit(1)
	}
	if len(config.Matrix.ChatRooms) == 0 {
		fmt.Fprintf(os.Stderr, "Error: MATRIX_CHAT_ROOMS is required\n")
		os.Exit(1)
	}

	bot, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize bot: %v\n", err)
		os.Exit(1)
	}
	defer bot.Stop()

	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running bot: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from environment variables
func loadConfig() app.Config {
	return app.Config{
		DatabasePath: environment.StringOr("DATABASE_PATH", "./realtybot.db"),
		Matrix: matrix.Config{
			Homeserver:  environment.StringOr("MATRIX_HOMESERVER", ""),
			UserID:      environment.StringOr("MATRIX_USER_ID", ""),
			AccessToken: environment.StringOr("MATRIX_ACCESS_TOKEN", ""),
			ChatRooms:   environment.StringSliceOr("MATRIX_CHAT_ROOMS", nil),
		},
		Provider:           environment.StringOr("MODEL_PROVIDER", app.ProviderOpenAI),
		APIKey:             environment.StringOr("MODEL_API_KEY", ""),
		GenerationModel:    environment.StringOr("GENERATION_MODEL", ""),
		EmbeddingModel:     environment.StringOr("EMBEDDING_MODEL", ""),
		BaseURL:            environment.StringOr("MODEL_BASE_URL", ""),
		IntentsPath:        environment.StringOr("INTENTS_PATH", ""),
		MarketDataPath:     environment.StringOr("MARKET_DATA_PATH", ""),
		AcquireMaxAttempts: environment.IntOr("ACQUIRE_MAX_ATTEMPTS", 0),
		AcquireRetryDelay:  environment.DurationOr("ACQUIRE_RETRY_DELAY", 0*time.Second),
	}
}
