package cli

import (
	"fmt"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type TraceWrite struct {
	Address uint32 `yaml:"address"`
	Value   uint8  `yaml:"value"`
}

// TraceStep loads a state, applies the writes, runs the frames and then saves a state.
// Each part is optional.
type TraceStep struct {
	Load   string       `yaml:"load"`
	Writes []TraceWrite `yaml:"writes"`
	Frames int          `yaml:"frames"`
	Save   string       `yaml:"save"`
}

// Trace is a scripted play session: memory writes between frames
type Trace struct {
	Game           uint32      `yaml:"game"`
	Hash           string      `yaml:"hash"`
	MemorySize     uint32      `yaml:"memory_size"`
	Hardcore       *bool       `yaml:"hardcore"`
	PauseOnTrigger []uint32    `yaml:"pause_on_trigger"`
	PauseOnReset   []uint32    `yaml:"pause_on_reset"`
	Steps          []TraceStep `yaml:"steps"`
}

const defaultMemorySize = 0x100

func ParseTrace(data []byte) (Trace, error) {
	var trace Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return Trace{}, fmt.Errorf("%w: %w", domain.ErrInvalidDefinition, err)
	}

	if trace.Game == 0 {
		return Trace{}, fmt.Errorf("%w: trace has no game", domain.ErrInvalidDefinition)
	}
	if trace.MemorySize == 0 {
		trace.MemorySize = defaultMemorySize
	}

	for i, step := range trace.Steps {
		if step.Frames < 0 {
			return Trace{}, fmt.Errorf("%w: step %d: negative frame count", domain.ErrInvalidDefinition, i+1)
		}
		for _, write := range step.Writes {
			if write.Address >= trace.MemorySize {
				return Trace{}, fmt.Errorf(
					"%w: step %d: address 0x%x outside memory of size 0x%x",
					domain.ErrInvalidDefinition, i+1, write.Address, trace.MemorySize,
				)
			}
		}
	}

	return trace, nil
}

func LoadTrace(fs afero.Fs, path string) (Trace, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Trace{}, fmt.Errorf("failed to read trace: %w", err)
	}
	return ParseTrace(data)
}
