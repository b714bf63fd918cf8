package runtime

import (
	"strings"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/parsing"
)

// Macros available without a Format: or Lookup: table
var builtinMacros = map[string]domain.ValueFormat{
	"Number":           domain.FormatValue,
	"Unsigned":         domain.FormatUnsigned,
	"Score":            domain.FormatScore,
	"Points":           domain.FormatScore,
	"Frames":           domain.FormatFrames,
	"Centisecs":        domain.FormatCentiseconds,
	"Seconds":          domain.FormatSeconds,
	"Minutes":          domain.FormatMinutes,
	"SecondsAsMinutes": domain.FormatSecondsAsMinutes,
}

type partState struct {
	part  domain.RichPresencePart
	value *valueState
}

type displayState struct {
	condition *triggerState
	parts     []partState
}

type richPresenceState struct {
	script   domain.RichPresence
	displays []displayState
	text     string
}

func newRichPresenceState(script domain.RichPresence) *richPresenceState {
	rp := &richPresenceState{script: script}
	for _, display := range script.Displays {
		state := displayState{}
		if display.Condition != nil {
			state.condition = newTriggerState(*display.Condition)
		}
		for _, part := range display.Parts {
			partState := partState{part: part}
			if part.IsMacro() {
				partState.value = newValueState(part.Value)
			}
			state.parts = append(state.parts, partState)
		}
		rp.displays = append(rp.displays, state)
	}
	return rp
}

func (rp *richPresenceState) reset() {
	for _, display := range rp.displays {
		if display.condition != nil {
			display.condition.resetHits()
		}
		for _, part := range display.parts {
			if part.value != nil {
				part.value.resetHits()
			}
		}
	}
	rp.text = ""
}

func (rp *richPresenceState) formatMacro(name string, value int64) string {
	if lookup, ok := rp.script.Lookups[name]; ok {
		if text, ok := lookup.Entries[uint32(value)]; ok {
			return text
		}
		if lookup.HasFallback {
			return lookup.Fallback
		}
		return ""
	}
	if format, ok := rp.script.Formats[name]; ok {
		return format.Format(value)
	}
	if format, ok := builtinMacros[name]; ok {
		return format.Format(value)
	}
	return "[Unknown macro]"
}

// process evaluates every display condition and renders the first display line that holds
func (rp *richPresenceState) process(mem Peeker) {
	selected := -1
	for i, display := range rp.displays {
		for _, part := range display.parts {
			if part.value != nil {
				part.value.refresh(mem)
			}
		}
		if display.condition == nil {
			if selected == -1 {
				selected = i
			}
			continue
		}
		display.condition.refresh(mem)
		if display.condition.evaluate().satisfied && selected == -1 {
			selected = i
		}
	}

	if selected == -1 {
		rp.text = ""
		return
	}

	var b strings.Builder
	for _, part := range rp.displays[selected].parts {
		if part.value == nil {
			b.WriteString(part.part.Literal)
			continue
		}
		b.WriteString(rp.formatMacro(part.part.Macro, part.value.evaluate()))
	}
	rp.text = b.String()
}

// SetRichPresence replaces the rich presence script. The empty script disables rich presence.
func (p *Processor) SetRichPresence(script string) error {
	if strings.TrimSpace(script) == "" {
		p.richPresence = nil
		return nil
	}

	parsed, err := parsing.ParseRichPresence(script)
	if err != nil {
		return err
	}
	p.richPresence = newRichPresenceState(parsed)
	return nil
}

// RichPresenceDisplay is the text rendered on the last processed frame
func (p *Processor) RichPresenceDisplay() string {
	if p.richPresence == nil {
		return ""
	}
	return p.richPresence.text
}
