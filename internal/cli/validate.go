package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Amund211/cheevo/internal/adapters/definitionprovider"
	"github.com/Amund211/cheevo/internal/parsing"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type EntityResult struct {
	Kind  string `json:"kind"`
	ID    uint32 `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}

type FileResult struct {
	File     string         `json:"file"`
	GameID   uint32         `json:"game_id,omitempty"`
	Title    string         `json:"title,omitempty"`
	Error    string         `json:"error,omitempty"`
	Entities []EntityResult `json:"entities"`
}

func (r FileResult) invalid() int {
	count := 0
	if r.Error != "" {
		count++
	}
	for _, entity := range r.Entities {
		if entity.Error != "" {
			count++
		}
	}
	return count
}

type ValidationResult struct {
	Valid   bool         `json:"valid"`
	Invalid int          `json:"invalid"`
	Files   []FileResult `json:"files"`
}

func NewValidateCommand(rt *Runtime, rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <game.yaml>...",
		Short: "Check that game definition files parse",
		Long: `Parse every achievement trigger, leaderboard and rich presence script in the
given game definition files and report the ones that are invalid.

Exit codes:
  0 - Every definition is valid
  1 - At least one definition is invalid`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rt, rootOpts, args, cmd)
		},
	}

	return cmd
}

func validateFile(fs afero.Fs, path string) FileResult {
	result := FileResult{File: path, Entities: []EntityResult{}}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	game, err := definitionprovider.ParseGameFile(data)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.GameID = game.ID
	result.Title = game.Title

	for _, achievement := range game.Achievements {
		entity := EntityResult{Kind: "achievement", ID: achievement.ID, Title: achievement.Title}
		if _, err := parsing.ParseTrigger(achievement.MemAddr); err != nil {
			entity.Error = err.Error()
		}
		result.Entities = append(result.Entities, entity)
	}

	for _, leaderboard := range game.Leaderboards {
		entity := EntityResult{Kind: "leaderboard", ID: leaderboard.ID, Title: leaderboard.Title}
		if _, err := parsing.ParseLeaderboard(leaderboard.Mem); err != nil {
			entity.Error = err.Error()
		}
		result.Entities = append(result.Entities, entity)
	}

	if game.RichPresence != "" {
		entity := EntityResult{Kind: "rich_presence"}
		if _, err := parsing.ParseRichPresence(game.RichPresence); err != nil {
			entity.Error = err.Error()
		}
		result.Entities = append(result.Entities, entity)
	}

	return result
}

func runValidate(rt *Runtime, opts *RootOptions, paths []string, cmd *cobra.Command) error {
	result := ValidationResult{Files: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		file := validateFile(rt.Fs, path)
		result.Invalid += file.invalid()
		result.Files = append(result.Files, file)
	}
	result.Valid = result.Invalid == 0

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return WrapExitError(ExitCommandError, "failed to write result", err)
		}
	} else {
		writeValidationText(out, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid %s", result.Invalid, plural(result.Invalid, "definition")))
	}
	return nil
}

func writeValidationText(w io.Writer, result ValidationResult) {
	for _, file := range result.Files {
		if file.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", file.File, file.Error)
			continue
		}
		fmt.Fprintf(w, "%s: %s (%d)\n", file.File, file.Title, file.GameID)
		for _, entity := range file.Entities {
			status := "ok"
			if entity.Error != "" {
				status = entity.Error
			}
			if entity.Kind == "rich_presence" {
				fmt.Fprintf(w, "  rich presence: %s\n", status)
				continue
			}
			fmt.Fprintf(w, "  %s %d %s: %s\n", entity.Kind, entity.ID, entity.Title, status)
		}
	}

	if result.Valid {
		fmt.Fprintln(w, "all definitions valid")
	} else {
		fmt.Fprintf(w, "%d invalid %s\n", result.Invalid, plural(result.Invalid, "definition"))
	}
}

func plural(count int, word string) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
