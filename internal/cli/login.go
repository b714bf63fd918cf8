package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/cache"
	"github.com/Amund211/cheevo/internal/adapters/definitionprovider"
	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/app"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/memory"
	"github.com/Amund211/cheevo/internal/ratelimiting"
	"github.com/Amund211/cheevo/internal/runtime"
	"github.com/Amund211/cheevo/internal/savestate"
	"github.com/spf13/cobra"
)

type LoginOptions struct {
	*RootOptions
	Username string
	Password string
	Token    string
	Activate uint32
}

func NewLoginCommand(rt *Runtime, rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the server and optionally load a game",
		Long: `Log in with a password or an API token and record the login.

With --activate the game's definitions and the user's unlocks are loaded as they
would be when the game starts, and a summary is printed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), rt, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "username (required)")
	_ = cmd.MarkFlagRequired("username")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	cmd.Flags().StringVar(&opts.Token, "token", "", "API token from a previous login")
	cmd.MarkFlagsOneRequired("password", "token")
	cmd.Flags().Uint32Var(&opts.Activate, "activate", 0, "id of a game to load after logging in")

	return cmd
}

func runLogin(ctx context.Context, rt *Runtime, opts *LoginOptions, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	ctx = logging.AddComponentToContext(ctx, "login")

	limiter, stopLimiter := ratelimiting.NewTokenBucketRateLimiter(1, 5)
	defer stopLimiter()
	client := api.NewClient(rt.Server, limiter)
	defer client.Close()

	gameCache, stopCache := cache.NewTTLCache[definitionprovider.GameData](time.Minute)
	defer stopCache()
	provider := definitionprovider.NewCached(
		gameCache,
		definitionprovider.NewDefinitionProvider(rt.Fs, rt.DefinitionsDir, client),
	)

	proc := runtime.New(memory.New())
	host := newConsoleHost(out)
	session := app.NewSession(app.Dependencies{
		Processor:  proc,
		Serializer: savestate.New(proc, rt.Fs),
		Client:     client,
		Provider:   provider,
		Repository: rt.Repository,
		Emulator:   host,
		Notifier:   host,
		NowFunc:    rt.NowFunc,
	}, rt.Settings)

	err := session.AttemptLogin(ctx, api.LoginRequest{
		Username: opts.Username,
		Password: opts.Password,
		APIToken: opts.Token,
	}, true)
	host.flush("")
	if err != nil {
		return WrapExitError(ExitFailure, "login failed", err)
	}

	if opts.Activate == 0 {
		return nil
	}

	activation, err := session.ActivateGame(ctx, opts.Activate, "")
	host.flush("")
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load game", err)
	}

	fmt.Fprintf(out, "achievements: %d active, %d unlocked\n", len(activation.ActiveAchievements), len(activation.UnlockedAchievements))
	fmt.Fprintf(out, "leaderboards: %d active\n", len(activation.ActiveLeaderboards))
	for _, invalid := range activation.Invalid {
		fmt.Fprintf(out, "invalid: %v\n", invalid)
	}
	return nil
}
