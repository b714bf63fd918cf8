package app

import (
	"time"

	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/runtime"
	"github.com/Amund211/cheevo/internal/savestate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Session connects the processor of the running game to the user, the server and the host.
//
// Methods that touch the processor (ActivateGame, DoFrame, Route, the save state methods) must be
// called from the frame loop. Request completions run on pipeline goroutines and only touch the
// mutex guarded User, Game and Trackers, the repository and the notifier.
type Session struct {
	User     *UserContext
	Game     *GameContext
	Trackers *ScoreTrackers

	proc       *runtime.Processor
	serializer *savestate.Serializer
	client     *api.Client
	provider   definitionProvider
	repo       sessionRepository
	emulator   Emulator
	notifier   Notifier
	nowFunc    func() time.Time

	printer *message.Printer
}

type Dependencies struct {
	Processor  *runtime.Processor
	Serializer *savestate.Serializer
	Client     *api.Client
	Provider   definitionProvider
	Repository sessionRepository
	Emulator   Emulator
	Notifier   Notifier
	NowFunc    func() time.Time
}

func NewSession(deps Dependencies, settings Settings) *Session {
	nowFunc := deps.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}

	return &Session{
		User:     NewUserContext(),
		Game:     NewGameContext(settings),
		Trackers: NewScoreTrackers(),

		proc:       deps.Processor,
		serializer: deps.Serializer,
		client:     deps.Client,
		provider:   deps.Provider,
		repo:       deps.Repository,
		emulator:   deps.Emulator,
		notifier:   deps.Notifier,
		nowFunc:    nowFunc,

		printer: message.NewPrinter(language.English),
	}
}
