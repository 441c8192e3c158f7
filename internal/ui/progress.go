package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

// TransferBar is one file's progress line inside the session view.
type TransferBar struct {
	Outbound bool
	Name     string
	Size     int64
	Percent  int

	startTime time.Time
	endTime   time.Time
	bar       progress.Model
}

func NewTransferBar(outbound bool, name string, size int64) *TransferBar {
	return &TransferBar{
		Outbound:  outbound,
		Name:      name,
		Size:      size,
		startTime: time.Now(),
		bar: progress.New(
			progress.WithGradient(ProgressStart, ProgressEnd),
			progress.WithWidth(25),
			progress.WithoutPercentage(),
		),
	}
}

// Set records a new percentage. Values never move backwards.
func (b *TransferBar) Set(percent int) {
	percent = max(0, min(percent, 100))
	if percent < b.Percent {
		return
	}
	b.Percent = percent
	if percent == 100 && b.endTime.IsZero() {
		b.endTime = time.Now()
	}
}

func (b *TransferBar) Done() bool {
	return b.Percent == 100
}

func (b *TransferBar) SetWidth(w int) {
	b.bar.Width = max(10, min(25, w))
}

// Speed is the average rate since the bar was created.
func (b *TransferBar) Speed() float64 {
	end := b.endTime
	if end.IsZero() {
		end = time.Now()
	}
	secs := end.Sub(b.startTime).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(b.Size) * float64(b.Percent) / 100 / secs
}

func (b *TransferBar) View(active string) string {
	var s strings.Builder

	icon := IconReceive
	if b.Outbound {
		icon = IconSend
	}
	if b.Done() {
		icon = IconSuccess
	}

	name := utils.TruncateString(b.Name, 24)
	fmt.Fprintf(&s, "  %s %s ", icon, ProgressLabelStyle.Render(name))
	s.WriteString(b.bar.ViewAs(float64(b.Percent) / 100))
	s.WriteString(ProgressPercentStyle.Render(fmt.Sprintf("%d%%", b.Percent)))

	if b.Size > 0 {
		s.WriteString(MutedStyle.Render(" " + utils.FormatSize(b.Size)))
	}
	if !b.Done() {
		if speed := b.Speed(); speed > 0 {
			s.WriteString(MutedStyle.Render(" " + utils.FormatSpeed(speed)))
		}
		if active != "" {
			s.WriteString(" " + active)
		}
	}
	return s.String()
}
