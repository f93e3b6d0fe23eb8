package entities

// TraceLevel grades a trace entry
type TraceLevel int

const (
	TraceInfo TraceLevel = iota
	TraceWarning
	TraceError
)

// String method for TraceLevel enum
func (l TraceLevel) String() string {
	switch l {
	case TraceInfo:
		return "info"
	case TraceWarning:
		return "warning"
	case TraceError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the level by name
func (l TraceLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// TraceEntry is one audit record. Seq is assigned by the TraceLog on append and
// replaces wall-clock timestamps so that identical inputs give identical logs.
type TraceEntry struct {
	Seq     int
	Rule    string
	Level   TraceLevel
	Message string
	SKU     *SKU           `json:",omitempty" yaml:",omitempty"`
	Store   string         `json:",omitempty" yaml:",omitempty"`
	Reason  string         `json:",omitempty" yaml:",omitempty"`
	Context map[string]any `json:",omitempty" yaml:",omitempty"`
}

// NewTrace creates an info-level entry
func NewTrace(rule, message string, context map[string]any) TraceEntry {
	return TraceEntry{Rule: rule, Level: TraceInfo, Message: message, Context: context}
}

// NewWarning creates a warning-level entry
func NewWarning(rule, message string, context map[string]any) TraceEntry {
	return TraceEntry{Rule: rule, Level: TraceWarning, Message: message, Context: context}
}

// NewError creates an error-level entry
func NewError(rule, message string, context map[string]any) TraceEntry {
	return TraceEntry{Rule: rule, Level: TraceError, Message: message, Context: context}
}

// NewGrant creates an entry recording that units of an SKU were granted to a store.
// The reason later becomes the reason code of transfers into that store.
func NewGrant(rule string, sku SKU, store, reason, message string, context map[string]any) TraceEntry {
	return TraceEntry{
		Rule:    rule,
		Level:   TraceInfo,
		Message: message,
		SKU:     &sku,
		Store:   store,
		Reason:  reason,
		Context: context,
	}
}

type grantKey struct {
	sku   SKU
	store string
}

// TraceLog is the append-only audit record of one invocation
type TraceLog struct {
	entries []TraceEntry
	reasons map[grantKey]string
}

// NewTraceLog creates an empty trace log
func NewTraceLog() *TraceLog {
	return &TraceLog{
		entries: make([]TraceEntry, 0),
		reasons: make(map[grantKey]string),
	}
}

// Append adds an entry and assigns its sequence number
func (t *TraceLog) Append(entry TraceEntry) TraceEntry {
	entry.Seq = len(t.entries) + 1
	t.entries = append(t.entries, entry)
	if entry.SKU != nil && entry.Store != "" && entry.Reason != "" {
		t.reasons[grantKey{sku: *entry.SKU, store: entry.Store}] = entry.Reason
	}
	return entry
}

// AppendAll adds entries in order
func (t *TraceLog) AppendAll(entries []TraceEntry) {
	for _, e := range entries {
		t.Append(e)
	}
}

// Record appends an info entry
func (t *TraceLog) Record(rule, message string, context map[string]any) {
	t.Append(NewTrace(rule, message, context))
}

// Warn appends a warning entry
func (t *TraceLog) Warn(rule, message string, context map[string]any) {
	t.Append(NewWarning(rule, message, context))
}

// ReasonFor returns the most recent grant reason recorded for an SKU/store pair
func (t *TraceLog) ReasonFor(sku SKU, store string) (string, bool) {
	reason, ok := t.reasons[grantKey{sku: sku, store: store}]
	return reason, ok
}

// Entries returns a copy of all entries in append order
func (t *TraceLog) Entries() []TraceEntry {
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries
func (t *TraceLog) Len() int {
	return len(t.entries)
}

// ByRule returns the entries recorded under a rule id
func (t *TraceLog) ByRule(rule string) []TraceEntry {
	var out []TraceEntry
	for _, e := range t.entries {
		if e.Rule == rule {
			out = append(out, e)
		}
	}
	return out
}

// AtLeast returns entries at or above the given level
func (t *TraceLog) AtLeast(level TraceLevel) []TraceEntry {
	var out []TraceEntry
	for _, e := range t.entries {
		if e.Level >= level {
			out = append(out, e)
		}
	}
	return out
}
