package domain

// RichPresenceLookup maps values to display text, with an optional fallback for unmapped values
type RichPresenceLookup struct {
	Entries     map[uint32]string
	Fallback    string
	HasFallback bool
}

// RichPresencePart is either literal text or a macro applied to a value expression
type RichPresencePart struct {
	Literal string
	Macro   string
	Value   Value
}

func (p RichPresencePart) IsMacro() bool {
	return p.Macro != ""
}

// RichPresenceDisplay is one display line. Lines without a condition are the default.
type RichPresenceDisplay struct {
	Condition *Trigger
	Parts     []RichPresencePart
}

type RichPresence struct {
	Lookups  map[string]RichPresenceLookup
	Formats  map[string]ValueFormat
	Displays []RichPresenceDisplay
}
