package cli

import (
	"fmt"
	"log/slog"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/config"
	"github.com/gratitude5dee/tendril/pkg/adapters/edge"
	"github.com/gratitude5dee/tendril/pkg/adapters/fal"
	"github.com/gratitude5dee/tendril/pkg/adapters/file"
	"github.com/gratitude5dee/tendril/pkg/adapters/memory"
	"github.com/gratitude5dee/tendril/pkg/adapters/redis"
	"github.com/gratitude5dee/tendril/pkg/adapters/session"
	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/persistence/middleware"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// BuildNode assembles a tendril node from host configuration, wiring the
// credential store backend, the inference client, the secrets service and the
// session source. Extra options are applied last so callers can override any
// wiring (notifier, hooks) per command.
func BuildNode(cfg *config.Config, logger *slog.Logger, extra ...tendril.Option) (*tendril.Node, error) {
	store, err := buildStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []tendril.Option{
		tendril.WithLogger(logger),
		tendril.WithCredentialStore(store),
		tendril.WithInferenceClient(buildInferenceClient(cfg, logger)),
		tendril.WithSessionSource(buildSessionSource(cfg)),
		tendril.WithSecretName(cfg.SecretName),
	}

	if cfg.Secrets.URL != "" {
		opts = append(opts, tendril.WithSecretsService(edge.New(cfg.Secrets.URL)))
	}
	if cfg.Model != "" {
		opts = append(opts, tendril.WithModel(domain.Model(cfg.Model)))
	}

	opts = append(opts, extra...)

	node, err := tendril.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("building node: %w", err)
	}
	return node, nil
}

// buildStore selects the credential store backend and wraps it with the
// configured middleware. Encryption applies whenever a key is set; the audit
// trail always rides on the host logger (it only ever logs presence, never
// the value).
func buildStore(cfg *config.Config, logger *slog.Logger) (ports.CredentialStore, error) {
	var store ports.CredentialStore

	switch cfg.Store.Backend {
	case "memory", "":
		store = memory.NewStore()
	case "file":
		store = file.New(cfg.Store.Path)
	case "redis":
		store = redis.New(cfg.Store.Redis.Address, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var chain []middleware.Middleware
	chain = append(chain, middleware.NewAuditMiddleware(logger))
	if key := cfg.Store.EncryptionKey; key != "" {
		chain = append(chain, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: []byte(key),
		}))
	}

	return middleware.Chain(store, chain...), nil
}

func buildInferenceClient(cfg *config.Config, logger *slog.Logger) *fal.Client {
	opts := []fal.Option{fal.WithLogger(logger)}
	if cfg.Fal.BaseURL != "" {
		opts = append(opts, fal.WithBaseURL(cfg.Fal.BaseURL))
	}
	if cfg.Fal.App != "" {
		opts = append(opts, fal.WithApp(cfg.Fal.App))
	}
	if cfg.Fal.Sync {
		opts = append(opts, fal.WithSyncMode())
	}
	return fal.New(opts...)
}

// buildSessionSource prefers a token file when configured; otherwise the
// token environment variable is read fresh on every observation.
func buildSessionSource(cfg *config.Config) ports.SessionSource {
	if cfg.Session.TokenFile != "" {
		return session.NewFromFile(cfg.Session.TokenFile)
	}
	return session.NewFromEnv(cfg.Session.TokenEnv)
}
