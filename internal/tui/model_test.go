package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
)

func sampleResult() *batch.Result {
	return &batch.Result{
		Tool:   batch.ToolCorrelation,
		Output: "/data/Pearson_Correlations.xlsx",
		Table: batch.Table{
			Columns: []string{"File Name", "Pearson(X,Y)"},
			Rows: []batch.Record{
				{File: "a.csv", Status: batch.StatusOK, Line: "Processed: a.csv", Values: map[string]batch.Cell{"Pearson(X,Y)": batch.Number(0.5)}},
				{File: "b.csv", Status: batch.StatusSkipped, Line: "b.csv: missing selected columns."},
			},
		},
	}
}

func TestModel_StreamsEventsThenShowsTable(t *testing.T) {
	m := NewModel("correlation", nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	res := sampleResult()
	_, cmd := m.Update(eventMsg(batch.Event{Kind: batch.EventStarted, Total: 2}))
	if cmd == nil {
		t.Fatalf("expected wait command after Started")
	}
	for i, rec := range res.Table.Rows {
		m.Update(eventMsg(batch.Event{Kind: batch.EventFile, Index: i + 1, Total: 2, Record: rec}))
	}
	if m.Done() {
		t.Fatalf("done before Done event")
	}
	view := m.View()
	if !strings.Contains(view, "[2/2]") || !strings.Contains(view, "Processed: a.csv") {
		t.Fatalf("progress view missing content:\n%s", view)
	}

	_, cmd = m.Update(eventMsg(batch.Event{Kind: batch.EventDone, Result: res}))
	if cmd != nil {
		t.Fatalf("no command expected after Done")
	}
	if !m.Done() || m.Result() != res {
		t.Fatalf("result not captured")
	}
	if got := len(m.results.Rows()); got != 2 {
		t.Fatalf("table rows = %d", got)
	}
	view = m.View()
	if !strings.Contains(view, "Pearson(X,Y)") || !strings.Contains(view, "✓ Saved") {
		t.Fatalf("final view missing table or output:\n%s", view)
	}
	if !strings.Contains(m.progress(), "ok 1") || !strings.Contains(m.progress(), "skipped 1") {
		t.Fatalf("counts: %s", m.progress())
	}
}

func TestModel_DoneWithError(t *testing.T) {
	m := NewModel("sampen", nil)
	m.Update(eventMsg(batch.Event{Kind: batch.EventDone, Err: errors.New("boom")}))
	if m.Err() == nil || !strings.Contains(m.View(), "boom") {
		t.Fatalf("error not rendered")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter should quit once done")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan batch.Event, 1)
	ch <- batch.Event{Kind: batch.EventStarted, Total: 3}
	close(ch)
	if msg, ok := waitForEvent(ch)().(eventMsg); !ok || msg.Total != 3 {
		t.Fatalf("expected Started event, got %#v", msg)
	}
	if _, ok := waitForEvent(ch)().(closedMsg); !ok {
		t.Fatalf("expected closedMsg on closed channel")
	}
}

func TestFeed_QuitBeforeDoneKeepsResult(t *testing.T) {
	src := make(chan batch.Event)
	res := sampleResult()
	go func() {
		defer close(src)
		src <- batch.Event{Kind: batch.EventStarted, Total: 2}
		for i, rec := range res.Table.Rows {
			src <- batch.Event{Kind: batch.EventFile, Index: i + 1, Total: 2, Record: rec}
		}
		src <- batch.Event{Kind: batch.EventDone, Result: res}
	}()

	feed := NewFeed(src)
	m := NewModel("correlation", feed.Events())
	_, cmd := m.Update(m.Init()())
	if cmd == nil {
		t.Fatalf("expected wait command after Started")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	// The view has quit but its last wait command is still reading.
	pending := make(chan tea.Msg, 1)
	go func() { pending <- cmd() }()

	got, err := feed.Close()
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if got != res {
		t.Fatalf("result lost after quitting the view")
	}
	<-pending
	if m.Done() {
		t.Fatalf("model should not have seen Done")
	}
}
