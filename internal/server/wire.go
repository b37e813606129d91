//go:build wireinject

package server

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/google/wire"
)

func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
