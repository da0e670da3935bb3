// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"
	"strings"

	outfs "aromelle/internal/adapters/out/firestore"
	"aromelle/internal/adapters/out/httpapi"
	"aromelle/internal/adapters/out/localstore"
	"aromelle/internal/adapters/out/token"
	usecase "aromelle/internal/application/usecase"
	cartdom "aromelle/internal/domain/cart"
	"aromelle/internal/infra/config"
	firestoreinfra "aromelle/internal/infra/firestore"
	"aromelle/internal/platform/notify"
)

// Container wires the cart client for one variant.
// Pure DI: build deps only, no behavior.
type Container struct {
	Cfg *config.Config

	CartUC   *usecase.CartUsecase
	Notifier *notify.Notifier

	// LocalStore is set only for the local variant (callers wire the
	// cross-process watcher from it).
	LocalStore *localstore.FileStore

	closers []func() error
}

// NewContainer builds the store selected by cfg.Variant plus the facade.
// renderer may be nil (notifications degrade to the log). nav may be nil
// (login redirects degrade to a log instruction).
func NewContainer(ctx context.Context, cfg *config.Config, renderer notify.Renderer, nav httpapi.Navigator) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("di: config is nil")
	}

	c := &Container{Cfg: cfg}
	c.Notifier = notify.New(renderer)
	c.closers = append(c.closers, func() error {
		c.Notifier.Close()
		return nil
	})

	if nav == nil {
		nav = logNavigator{}
	}

	var store cartdom.Store

	switch strings.TrimSpace(cfg.Variant) {
	case config.VariantLocal, "":
		fs := localstore.NewFileStore(cfg.CartFile)
		c.LocalStore = fs
		store = fs

	case config.VariantRemote:
		tokens, err := c.buildTokenStore(ctx, cfg)
		if err != nil {
			c.Close()
			return nil, err
		}
		store = httpapi.NewClient(cfg.APIBaseURL, tokens, nav)

	case config.VariantFirestore:
		if strings.TrimSpace(cfg.OwnerID) == "" {
			c.Close()
			return nil, fmt.Errorf("di: firestore variant requires CART_OWNER_ID")
		}
		cw, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, cw.Close)
		store = outfs.NewCartStoreFS(cw.Client, cfg.OwnerID)

	default:
		c.Close()
		return nil, fmt.Errorf("di: unknown cart variant %q", cfg.Variant)
	}

	c.CartUC = usecase.NewCartUsecaseWithNotifier(store, c.Notifier)
	log.Printf("[di] cart store variant = %s", cfg.Variant)
	return c, nil
}

// buildTokenStore prefers Secret Manager when a secret resource is configured;
// otherwise the buyer's token file is used.
func (c *Container) buildTokenStore(ctx context.Context, cfg *config.Config) (httpapi.TokenStore, error) {
	if strings.TrimSpace(cfg.APITokenSecret) != "" {
		src, err := token.NewSecretManagerSource(ctx, cfg.APITokenSecret)
		if err != nil {
			return nil, fmt.Errorf("di: secret manager token source: %w", err)
		}
		c.closers = append(c.closers, src.Close)
		return src, nil
	}
	return token.NewFileStore(cfg.TokenFile), nil
}

// Close releases resources in reverse build order. Errors are logged, the
// last one is returned.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}

	var last error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.Printf("[di] close error: %v", err)
			last = err
		}
	}
	c.closers = nil
	return last
}

// logNavigator is the degraded login redirect: no UI to navigate, so instruct.
type logNavigator struct{}

func (logNavigator) ToLogin() {
	log.Printf("[di] session expired: sign in again with `cartcli login`")
}
