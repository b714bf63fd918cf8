package definitionprovider

import (
	"context"
	"fmt"

	"github.com/Amund211/cheevo/internal/adapters/cache"
	"github.com/Amund211/cheevo/internal/api"
)

type cachedProvider struct {
	cache    cache.Cache[GameData]
	provider DefinitionProvider
}

// NewCached serves repeated activations of a game from the cache
func NewCached(gameCache cache.Cache[GameData], provider DefinitionProvider) *cachedProvider {
	return &cachedProvider{cache: gameCache, provider: provider}
}

func cacheKey(username string, gameID uint32, hardcore bool) string {
	return fmt.Sprintf("%s/%d/%t", username, gameID, hardcore)
}

func (p *cachedProvider) GetGameData(ctx context.Context, credentials api.Credentials, gameID uint32, hardcore bool) (GameData, error) {
	data, _, err := cache.GetOrCreate(ctx, p.cache, cacheKey(credentials.Username, gameID, hardcore), func() (GameData, error) {
		return p.provider.GetGameData(ctx, credentials, gameID, hardcore)
	})
	if err != nil {
		return GameData{}, err
	}
	return data, nil
}

// Forget drops the cached data so the next call fetches fresh unlocks
func (p *cachedProvider) Forget(username string, gameID uint32, hardcore bool) {
	cache.Invalidate(p.cache, cacheKey(username, gameID, hardcore))
}
