package transfer

import (
	"time"

	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

// Direction of a tracked transfer.
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

func (d Direction) String() string {
	if d == Outbound {
		return "sent"
	}
	return "received"
}

// ProgressTracker follows one file transfer and keeps its percentage
// non-decreasing.
type ProgressTracker struct {
	Direction Direction
	FileName  string
	FileSize  int64
	StartTime time.Time

	percent int
	endTime time.Time
}

func NewProgressTracker(dir Direction, fileName string, fileSize int64) *ProgressTracker {
	return &ProgressTracker{
		Direction: dir,
		FileName:  fileName,
		FileSize:  fileSize,
		StartTime: time.Now(),
	}
}

// Update records percent and reports whether it moved forward.
func (p *ProgressTracker) Update(percent int) bool {
	percent = max(0, min(100, percent))
	if percent <= p.percent {
		return false
	}
	p.percent = percent
	if percent == 100 {
		p.endTime = time.Now()
	}
	return true
}

func (p *ProgressTracker) Percent() int {
	return p.percent
}

func (p *ProgressTracker) Done() bool {
	return p.percent == 100
}

func (p *ProgressTracker) Duration() time.Duration {
	if p.endTime.IsZero() {
		return time.Since(p.StartTime)
	}
	return p.endTime.Sub(p.StartTime)
}

// Summary builds the completion table for this transfer.
func (p *ProgressTracker) Summary() ui.TransferSummary {
	d := p.Duration()
	speed := 0.0
	if secs := d.Seconds(); secs > 0 {
		speed = float64(p.FileSize) / secs
	}

	status := ui.IconSuccess + " Complete"
	if !p.Done() {
		status = ui.IconError + " Incomplete"
	}

	return ui.TransferSummary{
		Status:    status,
		Direction: p.Direction.String(),
		File:      utils.TruncateString(p.FileName, 40),
		TotalSize: utils.FormatSize(p.FileSize),
		Duration:  utils.FormatTimeDuration(d),
		Speed:     utils.FormatSpeed(speed),
	}
}
