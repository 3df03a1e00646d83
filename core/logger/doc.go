// Package logger provides structured logging utilities built on Go's standard slog package.
//
// It offers environment presets, context-aware attribute extraction and a set of
// attribute helpers shared by every sessionguard component.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/sessionguard/core/logger"
//
//	log := logger.New(
//		logger.WithDevelopment("console"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("token refreshed",
//		logger.Component("refresher"),
//		logger.AccountID(accountID),
//		logger.Minutes("interval_minutes", 15),
//	)
//
// # Environment Presets
//
//	// Development: text format, debug level, stdout
//	devLogger := logger.New(logger.WithDevelopment("console"))
//
//	// Production: JSON format, info level, stdout
//	prodLogger := logger.New(logger.WithProduction("console"))
//
//	// Or pick by APP_ENV value
//	log := logger.ForEnv(os.Getenv("APP_ENV"), "console")
//
// # Context-Aware Logging
//
//	log := logger.New(
//		logger.WithJSONFormatter(),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "response classified")
//
// # Nil Safety
//
// Helpers such as Error, AccountID and Username return an empty slog.Attr for
// zero inputs. slog omits empty attributes, so call sites never branch:
//
//	log.Warn("refresh failed", logger.Error(err), logger.AccountID(id))
//
// # Testing with Custom Output
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
//	log.Info("test message", logger.Component("test"))
//	assert.Contains(t, buf.String(), `"component":"test"`)
package logger
