package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// SessionUI runs a SessionModel and feeds it updates from other goroutines.
type SessionUI struct {
	program *tea.Program
	model   *SessionModel
	updates chan tea.Msg

	done     chan struct{}
	doneOnce sync.Once
}

func NewSessionUI(title string, onInput func(line string)) *SessionUI {
	updates := make(chan tea.Msg, 1024)
	model := NewSessionModel(title, updates, onInput)

	return &SessionUI{
		// inline mode keeps earlier terminal output visible
		program: tea.NewProgram(model),
		model:   model,
		updates: updates,
		done:    make(chan struct{}),
	}
}

// Run blocks until the user quits or Quit is called.
func (u *SessionUI) Run() error {
	defer u.doneOnce.Do(func() { close(u.done) })
	_, err := u.program.Run()
	return err
}

// Send queues msg for the model. It returns immediately once the UI has
// stopped.
func (u *SessionUI) Send(msg tea.Msg) {
	select {
	case u.updates <- msg:
	case <-u.done:
	}
}

func (u *SessionUI) Quit() {
	u.program.Quit()
}

// Done is closed after Run returns.
func (u *SessionUI) Done() <-chan struct{} {
	return u.done
}
