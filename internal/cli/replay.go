package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/cache"
	"github.com/Amund211/cheevo/internal/adapters/definitionprovider"
	"github.com/Amund211/cheevo/internal/adapters/raserver"
	"github.com/Amund211/cheevo/internal/adapters/sessionrepository"
	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/app"
	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/logging"
	"github.com/Amund211/cheevo/internal/memory"
	"github.com/Amund211/cheevo/internal/ratelimiting"
	"github.com/Amund211/cheevo/internal/runtime"
	"github.com/Amund211/cheevo/internal/savestate"
	"github.com/spf13/cobra"
)

const replayUser = "replay"

type ReplayOptions struct {
	*RootOptions
	DefinitionsDir string
	Hardcore       bool
}

func NewReplayCommand(rt *Runtime, rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <trace.yaml>",
		Short: "Run a game's definitions against a scripted memory trace",
		Long: `Replay a memory trace against the definitions of a game and print every change,
notification and pause request frame by frame.

The replay runs offline against an in-process server, nothing is submitted.

Examples:
  cheevo replay --definitions ./definitions traces/level1.yaml
  cheevo replay --definitions ./definitions --hardcore traces/level1.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), rt, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DefinitionsDir, "definitions", "", "directory holding <game id>.yaml definition files")
	cmd.Flags().BoolVar(&opts.Hardcore, "hardcore", false, "replay in hardcore, overrides the trace")

	return cmd
}

func runReplay(ctx context.Context, rt *Runtime, opts *ReplayOptions, tracePath string, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	ctx = logging.AddComponentToContext(ctx, "replay")

	trace, err := LoadTrace(rt.Fs, tracePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load trace", err)
	}

	dir := opts.DefinitionsDir
	if dir == "" {
		dir = rt.DefinitionsDir
	}
	if dir == "" {
		return NewExitError(ExitCommandError, "no definitions directory, set --definitions")
	}

	settings := rt.Settings
	if trace.Hardcore != nil {
		settings.Hardcore = *trace.Hardcore
	}
	if cmd.Flags().Changed("hardcore") {
		settings.Hardcore = opts.Hardcore
	}

	nowFunc := rt.NowFunc
	if nowFunc == nil {
		nowFunc = time.Now
	}

	provider := definitionprovider.NewCached(
		cache.NewBasicCache[definitionprovider.GameData](),
		definitionprovider.NewYAML(rt.Fs, dir),
	)
	data, err := provider.GetGameData(ctx, api.Credentials{Username: replayUser}, trace.Game, settings.Hardcore)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load definitions", err)
	}

	buf := make([]byte, trace.MemorySize)
	mem := memory.New()
	read, write := memory.SliceBank(buf)
	mem.Install(0, trace.MemorySize, read, write)
	proc := runtime.New(mem)

	limiter, stopLimiter := ratelimiting.NewTokenBucketRateLimiter(10, 20)
	defer stopLimiter()
	client := api.NewClient(raserver.NewMockServer(data.Game), limiter)
	defer client.Close()

	repo := sessionrepository.NewMemory(nowFunc)
	host := newConsoleHost(out)

	session := app.NewSession(app.Dependencies{
		Processor:  proc,
		Serializer: savestate.New(proc, rt.Fs),
		Client:     client,
		Provider:   provider,
		Repository: repo,
		Emulator:   host,
		Notifier:   host,
		NowFunc:    nowFunc,
	}, settings)

	err = session.AttemptLogin(ctx, api.LoginRequest{Username: replayUser, Password: replayUser}, true)
	host.flush("")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to log in", err)
	}

	activation, err := session.ActivateGame(ctx, trace.Game, trace.Hash)
	host.flush("")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to activate game", err)
	}
	for _, invalid := range activation.Invalid {
		fmt.Fprintf(out, "invalid: %v\n", invalid)
	}

	for _, id := range trace.PauseOnTrigger {
		session.Game.SetPauseOnTrigger(id, true)
	}
	for _, id := range trace.PauseOnReset {
		session.Game.SetPauseOnReset(id, true)
	}

	states := map[string][]byte{}
	frame := 0
	for i, step := range trace.Steps {
		if step.Load != "" {
			saved, ok := states[step.Load]
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("step %d: no state saved as %q", i+1, step.Load))
			}
			if err := session.RestoreState(ctx, saved); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("step %d: failed to load state %q", i+1, step.Load), err)
			}
			fmt.Fprintf(out, "state loaded: %s\n", step.Load)
			host.flush("  ")
		}

		for _, w := range step.Writes {
			buf[w.Address] = w.Value
		}

		for range step.Frames {
			frame++
			for _, change := range session.DoFrame(ctx) {
				fmt.Fprintf(out, "frame %d: %s\n", frame, domain.FormatChange(change))
			}
			host.flush("  ")
		}

		if step.Save != "" {
			saved, err := session.SaveState()
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("step %d: failed to save state %q", i+1, step.Save), err)
			}
			states[step.Save] = saved
			fmt.Fprintf(out, "state saved: %s\n", step.Save)
		}
	}

	client.Wait()
	host.flush("")

	unlocks, err := repo.GetUnlocks(ctx, replayUser, trace.Game, session.Game.Hardcore())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read unlocks", err)
	}
	writeReplaySummary(out, session, data.Game, frame, unlocks)
	return nil
}

func writeReplaySummary(w io.Writer, session *app.Session, game domain.GameDefinition, frames int, unlocks []uint32) {
	points := uint32(0)
	ids := make([]string, 0, len(unlocks))
	for _, id := range unlocks {
		ids = append(ids, strconv.FormatUint(uint64(id), 10))
		index := slices.IndexFunc(game.Achievements, func(a domain.AchievementDefinition) bool { return a.ID == id })
		if index >= 0 {
			points += game.Achievements[index].Points
		}
	}
	unlocked := "none"
	if len(ids) > 0 {
		unlocked = strings.Join(ids, ", ")
	}

	fmt.Fprintf(w, "frames: %d\n", frames)
	fmt.Fprintf(w, "rich presence: %s\n", session.RichPresence())
	fmt.Fprintf(w, "unlocked: %s\n", unlocked)
	fmt.Fprintf(w, "points: %d\n", points)
	for _, tracker := range session.Trackers.All() {
		fmt.Fprintf(w, "tracker %d: %s\n", tracker.LeaderboardID, tracker.Display)
	}
}
