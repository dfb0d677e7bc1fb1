package timeline_test

import (
	"testing"
	"time"

	"github.com/nbcassistant/backend/internal/model/conversation"
	"github.com/nbcassistant/backend/internal/timeline"
)

func messagesOf(entries []timeline.Entry) []conversation.Message {
	var out []conversation.Message
	for _, e := range entries {
		if e.Kind == timeline.KindMessage {
			out = append(out, e.Message)
		}
	}
	return out
}

func separatorCount(entries []timeline.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Kind == timeline.KindSeparator {
			n++
		}
	}
	return n
}

func TestAssembleEmpty(t *testing.T) {
	asm := timeline.NewAssembler(kolkata(t))

	entries := asm.Assemble(nil, nil)
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestAssembleExpandsRecordsInStoreOrder(t *testing.T) {
	loc := kolkata(t)
	asm := timeline.NewAssembler(loc)
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, loc)

	records := []conversation.Record{
		{Question: "q1", Answer: "a1", CreatedAt: base},
		{Question: "q2", Answer: "a2", CreatedAt: base.Add(time.Minute)},
	}

	msgs := messagesOf(asm.Assemble(records, nil))
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	wantContent := []string{"q1", "a1", "q2", "a2"}
	wantRole := []conversation.Role{
		conversation.RoleUser, conversation.RoleAssistant,
		conversation.RoleUser, conversation.RoleAssistant,
	}
	for i, msg := range msgs {
		if msg.Content != wantContent[i] || msg.Role != wantRole[i] {
			t.Fatalf("message %d: got %s %q", i, msg.Role, msg.Content)
		}
	}
}

func TestAssembleSeparatorAtMidnightBoundary(t *testing.T) {
	loc := kolkata(t)
	asm := timeline.NewAssembler(loc)

	records := []conversation.Record{
		{Question: "late", Answer: "a", CreatedAt: time.Date(2024, 1, 1, 23, 59, 0, 0, loc)},
		{Question: "early", Answer: "b", CreatedAt: time.Date(2024, 1, 2, 0, 1, 0, 0, loc)},
	}

	entries := asm.Assemble(records, nil)
	// One separator opening Jan 1 plus exactly one at the Jan 2 boundary.
	if got := separatorCount(entries); got != 2 {
		t.Fatalf("expected 2 separators, got %d", got)
	}
	if entries[0].Kind != timeline.KindSeparator {
		t.Fatal("sequence must open with a separator")
	}
	if entries[3].Kind != timeline.KindSeparator {
		t.Fatalf("expected separator before first message of Jan 2, entries: %+v", entries)
	}
}

func TestAssembleSingleDayHasOneSeparator(t *testing.T) {
	loc := kolkata(t)
	asm := timeline.NewAssembler(loc)
	base := time.Date(2024, 3, 5, 9, 0, 0, 0, loc)

	records := []conversation.Record{
		{Question: "q1", Answer: "a1", CreatedAt: base},
		{Question: "q2", Answer: "a2", CreatedAt: base.Add(6 * time.Hour)},
	}

	if got := separatorCount(asm.Assemble(records, nil)); got != 1 {
		t.Fatalf("expected 1 separator, got %d", got)
	}
}

func TestAssembleOptimisticTrailing(t *testing.T) {
	loc := kolkata(t)
	asm := timeline.NewAssembler(loc)

	// Optimistic timestamp earlier than the persisted record; it must
	// still render after the persisted log.
	records := []conversation.Record{
		{Question: "q1", Answer: "a1", CreatedAt: time.Date(2024, 3, 5, 12, 0, 0, 0, loc)},
	}
	optimistic := []conversation.Message{
		{Role: conversation.RoleUser, Content: "pending", Timestamp: time.Date(2024, 3, 5, 11, 0, 0, 0, loc)},
	}

	msgs := messagesOf(asm.Assemble(records, optimistic))
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[2].Content != "pending" {
		t.Fatalf("optimistic message not trailing: %+v", msgs)
	}
}

func TestAssembleInvalidTimestampGetsSentinel(t *testing.T) {
	loc := kolkata(t)
	asm := timeline.NewAssembler(loc)

	records := []conversation.Record{
		{Question: "ok", Answer: "fine", CreatedAt: time.Date(2024, 3, 5, 12, 0, 0, 0, loc)},
		{Question: "broken", Answer: "row"}, // zero CreatedAt
	}

	entries := asm.Assemble(records, nil)
	msgs := messagesOf(entries)
	if len(msgs) != 4 {
		t.Fatalf("malformed record dropped: %d messages", len(msgs))
	}

	var sentinels int
	for _, e := range entries {
		if e.Kind == timeline.KindMessage && e.Clock == timeline.InvalidTimeLabel {
			sentinels++
		}
	}
	if sentinels != 2 {
		t.Fatalf("expected 2 sentinel clocks, got %d", sentinels)
	}

	// The broken rows must not open a day group of their own.
	if got := separatorCount(entries); got != 1 {
		t.Fatalf("expected 1 separator, got %d", got)
	}
}
