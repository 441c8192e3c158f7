package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	maxChatLines = 12
	maxNotices   = 3
)

// Messages accepted by SessionModel. They are plain values so callers
// outside the program can build them.
type (
	IdentityMsg struct {
		ID     string
		Invite string
	}

	StatusMsg struct {
		State string
		Peer  string
		// Active spins the status indicator while waiting on the network.
		Active bool
	}

	ChatMsg struct {
		Local bool
		From  string
		Text  string
		At    time.Time
	}

	ProgressMsg struct {
		Outbound bool
		File     string
		Size     int64
		Percent  int
	}

	NoticeMsg struct {
		Text string
		Err  bool
	}

	// PrintMsg is written above the live view and stays in the scrollback.
	PrintMsg struct {
		Text string
	}
)

// SessionModel is the interactive view of one call: status line, chat log,
// transfer bars and an input line.
type SessionModel struct {
	title string

	identity IdentityMsg
	status   StatusMsg
	chat     []ChatMsg
	bars     []*TransferBar
	notices  []NoticeMsg

	input   textinput.Model
	spinner spinner.Model
	width   int

	onInput func(line string)
	updates <-chan tea.Msg

	quitting bool
}

func NewSessionModel(title string, updates <-chan tea.Msg, onInput func(string)) *SessionModel {
	ti := textinput.New()
	ti.Placeholder = "message, /send <path> or /quit"
	ti.Prompt = InputPromptStyle.Render("> ")
	ti.CharLimit = 4096
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &SessionModel{
		title:   title,
		input:   ti,
		spinner: s,
		width:   80,
		onInput: onInput,
		updates: updates,
		status:  StatusMsg{State: "starting", Active: true},
	}
}

func (m *SessionModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForUpdates())
}

func (m *SessionModel) waitForUpdates() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-m.updates
		if !ok {
			return tea.Quit()
		}
		return msg
	}
}

func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-4)
		for _, b := range m.bars {
			b.SetWidth(msg.Width - 60)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case IdentityMsg, StatusMsg, ChatMsg, ProgressMsg, NoticeMsg:
		m.apply(msg)
		return m, m.waitForUpdates()

	case PrintMsg:
		return m, tea.Batch(tea.Println(msg.Text), m.waitForUpdates())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit clears the input line and hands it to onInput off the UI goroutine.
func (m *SessionModel) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return nil
	}
	if line == "/quit" {
		m.quitting = true
		return tea.Quit
	}
	if m.onInput == nil {
		return nil
	}
	return func() tea.Msg {
		m.onInput(line)
		return nil
	}
}

func (m *SessionModel) apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case IdentityMsg:
		m.identity = msg

	case StatusMsg:
		m.status = msg

	case ChatMsg:
		m.chat = append(m.chat, msg)
		if len(m.chat) > maxChatLines {
			m.chat = m.chat[len(m.chat)-maxChatLines:]
		}

	case ProgressMsg:
		bar := m.bar(msg)
		bar.Set(msg.Percent)

	case NoticeMsg:
		m.notices = append(m.notices, msg)
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}
	}
}

// bar finds the unfinished bar for a file or starts a new one.
func (m *SessionModel) bar(msg ProgressMsg) *TransferBar {
	for _, b := range m.bars {
		if b.Outbound == msg.Outbound && b.Name == msg.File && !b.Done() {
			if msg.Size > 0 {
				b.Size = msg.Size
			}
			return b
		}
	}
	b := NewTransferBar(msg.Outbound, msg.File, msg.Size)
	b.SetWidth(m.width - 60)
	m.bars = append(m.bars, b)
	return b
}

func (m *SessionModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s QuickShare - %s", IconChat, m.title)))
	b.WriteString("\n")

	if m.identity.ID != "" {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("%s %s", IconCopy, m.identity.ID)))
		if m.identity.Invite != "" {
			b.WriteString(MutedStyle.Render(fmt.Sprintf("  %s %s", IconLink, m.identity.Invite)))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.viewStatus())
	b.WriteString("\n\n")

	if len(m.chat) == 0 {
		b.WriteString(MutedStyle.Render("No messages yet"))
		b.WriteString("\n")
	}
	for _, c := range m.chat {
		b.WriteString(viewChat(c))
		b.WriteString("\n")
	}

	if len(m.bars) > 0 {
		b.WriteString("\n")
		for _, bar := range m.bars {
			b.WriteString(bar.View(m.spinner.View()))
			b.WriteString("\n")
		}
	}

	if len(m.notices) > 0 {
		b.WriteString("\n")
		for _, n := range m.notices {
			if n.Err {
				b.WriteString(ErrorStyle.Render(IconError + " " + n.Text))
			} else {
				b.WriteString(MutedStyle.Render(IconInfo + " " + n.Text))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("Enter to send, /send <path> for files, /quit or Ctrl+C to hang up"))

	return ContainerStyle.Render(b.String())
}

func (m *SessionModel) viewStatus() string {
	indicator := IconConnect
	if m.status.Active {
		indicator = m.spinner.View()
	}

	line := fmt.Sprintf("%s %s", indicator, StatusStyle.Render(m.status.State))
	if m.status.Peer != "" {
		line += fmt.Sprintf(" %s %s", IconPeer, m.status.Peer)
	}
	return line
}

func viewChat(c ChatMsg) string {
	speaker := RemoteSpeakerStyle.Render(c.From)
	if c.Local {
		speaker = LocalSpeakerStyle.Render("you")
	}
	stamp := ""
	if !c.At.IsZero() {
		stamp = TimestampStyle.Render(c.At.Format("15:04")) + " "
	}
	return fmt.Sprintf("%s%s: %s", stamp, speaker, c.Text)
}
