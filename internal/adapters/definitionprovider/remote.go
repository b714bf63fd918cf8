package definitionprovider

import (
	"context"
	"fmt"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
)

type remoteProvider struct {
	client *api.Client
}

// NewRemote fetches definitions from the server through client
func NewRemote(client *api.Client) *remoteProvider {
	return &remoteProvider{client: client}
}

func (p *remoteProvider) GetGameData(ctx context.Context, credentials api.Credentials, gameID uint32, hardcore bool) (GameData, error) {
	response := api.CallWithRetries(ctx, p.client, api.FetchGameDataRequest{
		Credentials: credentials,
		GameID:      gameID,
		Hardcore:    hardcore,
	}, 1)

	switch response.Result {
	case api.Success:
	case api.Incomplete:
		return GameData{}, fmt.Errorf("%w: %s", domain.ErrTemporarilyUnavailable, response.ErrorMessage)
	default:
		return GameData{}, fmt.Errorf("%w: game %d: %s", domain.ErrUnknownGame, gameID, response.ErrorMessage)
	}

	return GameData{
		Game:                 response.Game,
		UnlockedAchievements: response.UnlockedAchievements,
	}, nil
}
