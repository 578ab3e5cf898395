// Package storage persists tariff documents and load profiles.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/tariffkit/tariffkit/pkg/profile"
	"github.com/tariffkit/tariffkit/pkg/types"
)

var (
	ErrTariffNotFound  = errors.New("tariff not found")
	ErrProfileNotFound = errors.New("load profile not found")
)

// TariffInfo is the listing metadata for one stored tariff.
type TariffInfo struct {
	ID       string `json:"id"`
	Utility  string `json:"utility"`
	RateName string `json:"rateName"`
	Sector   string `json:"sector"`
}

// Store defines the interface for persisting tariffs and load profiles.
type Store interface {
	// Tariffs
	ListTariffs(ctx context.Context) ([]TariffInfo, error)
	GetTariff(ctx context.Context, id string) (*types.Tariff, error)
	SaveTariff(ctx context.Context, id string, t *types.Tariff) error

	// Load profiles
	ListProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
	SaveProfile(ctx context.Context, id string, p *profile.Profile) error

	// Lifecycle
	Close() error
}

// Configured sets up the Store based on flags.
func Configured() Store {
	provider := lflag.String("storage-provider", "filesystem", "Storage provider to use (available: filesystem)")

	var s struct{ Store }

	fs := configuredFilesystem()

	lflag.Do(func() {
		switch *provider {
		case "filesystem":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("filesystem storage validation failed: %v", err))
			}
			s.Store = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("filesystem storage init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &s
}
