package parsing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Amund211/cheevo/internal/domain"
)

func richPresenceErr(line int, format string, args ...any) error {
	return fmt.Errorf("%w: rich presence line %d: %s", domain.ErrInvalidDefinition, line, fmt.Sprintf(format, args...))
}

func parseLookupKey(key string) (uint32, error) {
	key = strings.TrimSpace(key)
	if hex, ok := strings.CutPrefix(strings.ToLower(key), "0x"); ok {
		value, err := strconv.ParseUint(hex, 16, 32)
		return uint32(value), err
	}
	value, err := strconv.ParseUint(key, 10, 32)
	return uint32(value), err
}

func parseLookupEntry(lookup *domain.RichPresenceLookup, keys, text string) error {
	if strings.TrimSpace(keys) == "*" {
		lookup.Fallback = text
		lookup.HasFallback = true
		return nil
	}

	for key := range strings.SplitSeq(keys, ",") {
		low, high, isRange := strings.Cut(key, "-")
		first, err := parseLookupKey(low)
		if err != nil {
			return err
		}
		last := first
		if isRange {
			last, err = parseLookupKey(high)
			if err != nil {
				return err
			}
			if last < first {
				return fmt.Errorf("invalid range %q", key)
			}
		}

		for value := first; ; value++ {
			lookup.Entries[value] = text
			if value == last {
				break
			}
		}
	}
	return nil
}

func parseDisplayText(text string) ([]domain.RichPresencePart, error) {
	var parts []domain.RichPresencePart
	for text != "" {
		at := strings.IndexByte(text, '@')
		if at == -1 {
			parts = append(parts, domain.RichPresencePart{Literal: text})
			break
		}

		open := strings.IndexByte(text[at:], '(')
		closing := strings.IndexByte(text[at:], ')')
		if open == -1 || closing == -1 || closing < open {
			parts = append(parts, domain.RichPresencePart{Literal: text})
			break
		}
		open += at
		closing += at

		if at > 0 {
			parts = append(parts, domain.RichPresencePart{Literal: text[:at]})
		}

		name := text[at+1 : open]
		if name == "" {
			return nil, fmt.Errorf("macro without a name in %q", text)
		}
		value, err := ParseValue(text[open+1 : closing])
		if err != nil {
			return nil, fmt.Errorf("macro @%s: %w", name, err)
		}
		parts = append(parts, domain.RichPresencePart{Macro: name, Value: value})

		text = text[closing+1:]
	}
	return parts, nil
}

func parseDisplayLine(line string) (domain.RichPresenceDisplay, error) {
	if !strings.HasPrefix(line, "?") {
		parts, err := parseDisplayText(line)
		return domain.RichPresenceDisplay{Parts: parts}, err
	}

	end := strings.IndexByte(line[1:], '?')
	if end == -1 {
		return domain.RichPresenceDisplay{}, fmt.Errorf("unterminated condition in %q", line)
	}
	end++

	trigger, err := ParseTrigger(line[1:end])
	if err != nil {
		return domain.RichPresenceDisplay{}, err
	}
	parts, err := parseDisplayText(line[end+1:])
	if err != nil {
		return domain.RichPresenceDisplay{}, err
	}
	return domain.RichPresenceDisplay{Condition: &trigger, Parts: parts}, nil
}

// ParseRichPresence parses a rich presence script made of `Lookup:Name` and `Format:Name`
// tables followed by a `Display:` section. The display section holds `?condition?text`
// lines and ends with the default line. Lines starting with `//` are comments.
func ParseRichPresence(script string) (domain.RichPresence, error) {
	rp := domain.RichPresence{
		Lookups: map[string]domain.RichPresenceLookup{},
		Formats: map[string]domain.ValueFormat{},
	}

	const (
		sectionNone = iota
		sectionLookup
		sectionFormat
		sectionDisplay
	)

	section := sectionNone
	var (
		name          string
		lookup        domain.RichPresenceLookup
		hasDefault    bool
		displayClosed bool
	)

	flush := func() {
		if section == sectionLookup {
			rp.Lookups[name] = lookup
		}
	}

	lines := strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNumber := i + 1
		line := raw
		if comment := strings.Index(line, "//"); comment != -1 {
			line = line[:comment]
		}
		line = strings.TrimRight(line, " \t")

		if line == "" {
			if section == sectionDisplay && len(rp.Displays) > 0 {
				displayClosed = true
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "Lookup:"):
			flush()
			section = sectionLookup
			name = strings.TrimPrefix(line, "Lookup:")
			lookup = domain.RichPresenceLookup{Entries: map[uint32]string{}}
			continue
		case strings.HasPrefix(line, "Format:"):
			flush()
			section = sectionFormat
			name = strings.TrimPrefix(line, "Format:")
			rp.Formats[name] = domain.FormatValue
			continue
		case line == "Display:":
			flush()
			section = sectionDisplay
			continue
		}

		switch section {
		case sectionLookup:
			keys, text, ok := strings.Cut(line, "=")
			if !ok {
				return domain.RichPresence{}, richPresenceErr(lineNumber, "expected key=value in lookup %s", name)
			}
			if err := parseLookupEntry(&lookup, keys, text); err != nil {
				return domain.RichPresence{}, richPresenceErr(lineNumber, "lookup %s: %v", name, err)
			}
		case sectionFormat:
			formatType, ok := strings.CutPrefix(line, "FormatType=")
			if !ok {
				return domain.RichPresence{}, richPresenceErr(lineNumber, "expected FormatType= in format %s", name)
			}
			rp.Formats[name] = domain.ParseValueFormat(formatType)
		case sectionDisplay:
			if displayClosed || hasDefault {
				continue
			}
			display, err := parseDisplayLine(line)
			if err != nil {
				return domain.RichPresence{}, richPresenceErr(lineNumber, "%v", err)
			}
			rp.Displays = append(rp.Displays, display)
			if display.Condition == nil {
				hasDefault = true
			}
		default:
			return domain.RichPresence{}, richPresenceErr(lineNumber, "text outside of a section")
		}
	}
	flush()

	if !hasDefault {
		return domain.RichPresence{}, fmt.Errorf("%w: rich presence has no default display line", domain.ErrInvalidDefinition)
	}

	return rp, nil
}
