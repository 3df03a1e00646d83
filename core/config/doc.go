// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads .env files on first use and uses the caarlos0/env library
// for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/sessionguard/core/config"
//
//	type GatewayConfig struct {
//		BaseURL     string `env:"API_BASE_URL,required"`
//		RefreshPath string `env:"TOKEN_REFRESH_PATH" envDefault:"/api/token/refresh"`
//	}
//
//	func main() {
//		var gw GatewayConfig
//
//		// Load with error handling
//		if err := config.Load(&gw); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&gw)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per process lifetime:
//
//	var cfg1 GatewayConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 GatewayConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently. Tests that need a fresh read call
// Reset.
package config
