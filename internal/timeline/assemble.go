package timeline

import (
	"time"

	"github.com/nbcassistant/backend/internal/model/conversation"
)

// Kind tags a timeline entry.
type Kind int

const (
	KindSeparator Kind = iota
	KindMessage
)

// Entry is one rendered element: either a day separator or a message
// with its formatted clock label.
type Entry struct {
	Kind    Kind
	Label   string // day heading, separators only
	Message conversation.Message
	Clock   string // wall-clock label, messages only
}

// Assembler turns persisted records plus in-flight optimistic messages
// into an ordered, day-grouped sequence. It holds only rendering
// settings; every call recomputes the projection from scratch.
type Assembler struct {
	loc *time.Location
	now func() time.Time
}

func NewAssembler(loc *time.Location) *Assembler {
	if loc == nil {
		loc = time.UTC
	}
	return &Assembler{loc: loc, now: time.Now}
}

// Assemble expands each record into its user and assistant messages in
// store order, appends optimistic messages in submission order, and
// inserts a day separator before the first message and wherever the
// calendar day changes. Optimistic entries always trail the persisted
// log; no timestamp interleaving across the two sources is attempted,
// which keeps client clock skew from reordering history.
func (a *Assembler) Assemble(persisted []conversation.Record, optimistic []conversation.Message) []Entry {
	messages := make([]conversation.Message, 0, len(persisted)*2+len(optimistic))
	for _, rec := range persisted {
		pair := conversation.Expand(rec)
		messages = append(messages, pair[0], pair[1])
	}
	messages = append(messages, optimistic...)

	now := a.now()
	entries := make([]Entry, 0, len(messages)+4)
	var lastDay time.Time
	haveDay := false

	for _, msg := range messages {
		// Unparseable timestamps never open a new day group.
		if !msg.Timestamp.IsZero() {
			day := msg.Timestamp.In(a.loc)
			if !haveDay || !sameDay(day, lastDay) {
				entries = append(entries, Entry{
					Kind:  KindSeparator,
					Label: DayLabel(msg.Timestamp, now, a.loc),
				})
				lastDay = day
				haveDay = true
			}
		}

		entries = append(entries, Entry{
			Kind:    KindMessage,
			Message: msg,
			Clock:   ClockLabel(msg.Timestamp, a.loc),
		})
	}

	return entries
}
