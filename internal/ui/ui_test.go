package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionModelAppliesUpdates(t *testing.T) {
	m := NewSessionModel("listening", nil, nil)

	m.Update(IdentityMsg{ID: "brave-red-fox-jumps", Invite: "https://quickshare.onrender.com/?call=brave-red-fox-jumps"})
	m.Update(StatusMsg{State: "connected", Peer: "Alice"})
	m.Update(ChatMsg{From: "Alice", Text: "hello there"})
	m.Update(ChatMsg{Local: true, Text: "hi back"})
	m.Update(ProgressMsg{File: "report.pdf", Size: 3, Percent: 66})

	view := m.View()
	assert.Contains(t, view, "brave-red-fox-jumps")
	assert.Contains(t, view, "connected")
	assert.Contains(t, view, "hello there")
	assert.Contains(t, view, "hi back")
	assert.Contains(t, view, "report.pdf")
	assert.Contains(t, view, "66%")
}

func TestSessionModelReusesUnfinishedBar(t *testing.T) {
	m := NewSessionModel("call", nil, nil)

	m.Update(ProgressMsg{Outbound: true, File: "a.bin", Size: 10, Percent: 10})
	m.Update(ProgressMsg{Outbound: true, File: "a.bin", Size: 10, Percent: 100})
	require.Len(t, m.bars, 1)
	assert.True(t, m.bars[0].Done())

	// a second transfer of the same name gets its own bar
	m.Update(ProgressMsg{Outbound: true, File: "a.bin", Size: 10, Percent: 5})
	assert.Len(t, m.bars, 2)

	// inbound and outbound are tracked apart
	m.Update(ProgressMsg{File: "a.bin", Size: 10, Percent: 5})
	assert.Len(t, m.bars, 3)
}

func TestSessionModelChatIsBounded(t *testing.T) {
	m := NewSessionModel("call", nil, nil)
	for i := 0; i < maxChatLines+5; i++ {
		m.Update(ChatMsg{From: "peer", Text: "line"})
	}
	assert.Len(t, m.chat, maxChatLines)
}

func TestSessionModelSubmit(t *testing.T) {
	var got []string
	m := NewSessionModel("call", nil, func(line string) { got = append(got, line) })

	m.input.SetValue("  hello  ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"hello"}, got)
	assert.Empty(t, m.input.Value())

	m.input.SetValue("   ")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m.input.SetValue("/quit")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, []string{"hello"}, got, "quit is handled by the model")
	assert.Empty(t, m.View())
}

func TestTransferBarIsMonotonic(t *testing.T) {
	b := NewTransferBar(false, "x", 100)
	b.Set(40)
	b.Set(20)
	assert.Equal(t, 40, b.Percent)
	b.Set(150)
	assert.Equal(t, 100, b.Percent)
	assert.True(t, b.Done())
}

func TestTransferSummaryView(t *testing.T) {
	view := TransferSummaryView("Transfer Summary", TransferSummary{
		Status:    "Complete",
		Direction: "received",
		File:      "report.pdf",
		TotalSize: "3 B",
		Duration:  "1s",
		Speed:     "3 B/s",
	})

	for _, want := range []string{"Transfer Summary", "received", "report.pdf", "3 B/s"} {
		assert.Contains(t, view, want)
	}
}

func TestIdentityInfoView(t *testing.T) {
	view := IdentityInfo{ID: "calm-blue-owl-sings", Invite: "http://localhost:8080/?call=calm-blue-owl-sings"}.View()
	assert.Contains(t, view, "calm-blue-owl-sings")
	assert.Contains(t, view, "localhost:8080")
}

func TestFileTableView(t *testing.T) {
	view := FileTableView([]FileTableItem{{Index: 1, Name: "notes.txt", Size: 2048, Type: "text/plain"}})
	assert.Contains(t, view, "notes.txt")
	assert.Contains(t, view, "text/plain")
	assert.Contains(t, FileTableView(nil), "No files")
}
