package definitionprovider

import (
	"context"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/spf13/afero"
)

// GameData is a game's definitions plus the achievements the user already unlocked
type GameData struct {
	Game                 domain.GameDefinition
	UnlockedAchievements []uint32
}

type DefinitionProvider interface {
	GetGameData(ctx context.Context, credentials api.Credentials, gameID uint32, hardcore bool) (GameData, error)
}

// NewDefinitionProvider picks local files when dir is set, the server otherwise
func NewDefinitionProvider(fs afero.Fs, dir string, client *api.Client) DefinitionProvider {
	if dir != "" {
		return NewYAML(fs, dir)
	}
	return NewRemote(client)
}
