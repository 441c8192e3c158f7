package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// LineSpinner animates a single status line outside of a bubbletea program.
type LineSpinner struct {
	spinner spinner.Spinner

	mu      sync.Mutex
	message string

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewLineSpinner(s spinner.Spinner, message string) *LineSpinner {
	return &LineSpinner{
		spinner: s,
		message: message,
		done:    make(chan struct{}),
	}
}

// Start begins drawing frames at the spinner's own FPS.
func (s *LineSpinner) Start() *LineSpinner {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.spinner.FPS)
		defer ticker.Stop()

		frames := s.spinner.Frames
		for i := 0; ; i++ {
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Printf("\r\033[K%s %s", SpinnerStyle.Render(frames[i%len(frames)]), msg)

			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// Stop clears the line. It is safe to call more than once.
func (s *LineSpinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Print("\r\033[K")
	})
}

func (s *LineSpinner) Success(message string) {
	s.Stop()
	PrintSuccess(message)
}

func (s *LineSpinner) Error(message string) {
	s.Stop()
	PrintError(message)
}

func (s *LineSpinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Connecting shows a globe spinner for network setup.
func Connecting(message string) *LineSpinner {
	return NewLineSpinner(spinner.Globe, message).Start()
}
