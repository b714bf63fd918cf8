package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/Amund211/cheevo/internal/adapters/sessionrepository"
	"github.com/Amund211/cheevo/internal/api"
	"github.com/Amund211/cheevo/internal/app"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Runtime is what the commands run against
type Runtime struct {
	Fs afero.Fs
	// Server is used by commands that talk to the server. replay always runs offline.
	Server     api.Server
	Repository sessionrepository.SessionRepository
	// DefinitionsDir holds <game id>.yaml files. Definitions come from the server when it is empty.
	DefinitionsDir string
	Settings       app.Settings
	NowFunc        func() time.Time
}

type RootOptions struct {
	Format string
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand(rt *Runtime) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cheevo",
		Short: "Achievement and leaderboard runtime",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewValidateCommand(rt, opts))
	cmd.AddCommand(NewReplayCommand(rt, opts))
	cmd.AddCommand(NewLoginCommand(rt, opts))

	return cmd
}
