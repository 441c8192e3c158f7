package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	pretty "github.com/jedib0t/go-pretty/v6/table"

	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

// FileTableItem represents a file in the table
type FileTableItem struct {
	Index int
	Name  string
	Size  int64
	Type  string
}

func styleRows(row, col int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return TableHeaderStyle
	case row%2 == 0:
		return TableRowStyle
	default:
		return TableRowAltStyle
	}
}

// FileTableView lists files queued for sending.
func FileTableView(items []FileTableItem) string {
	if len(items) == 0 {
		return MutedStyle.Render("No files")
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		fileType := item.Type
		if fileType == "" {
			fileType = "unknown"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.Index),
			utils.TruncateString(item.Name, 50),
			utils.FormatSize(item.Size),
			utils.TruncateString(fileType, 20),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("#", "Name", "Size", "Type").
		Rows(rows...).
		StyleFunc(styleRows).
		Render()
}

func RenderFileTable(items []FileTableItem) {
	fmt.Println(FileTableView(items))
}

type TransferSummary struct {
	Status    string
	Direction string
	File      string
	TotalSize string
	Duration  string
	Speed     string
}

// TransferSummaryView renders the per-file completion table.
func TransferSummaryView(title string, summary TransferSummary) string {
	t := pretty.NewWriter()
	t.SetTitle(title)
	t.SetStyle(pretty.StyleRounded)
	t.AppendHeader(pretty.Row{"Metric", "Value"})
	t.AppendRows([]pretty.Row{
		{"Status", summary.Status},
		{"Direction", summary.Direction},
		{"File", summary.File},
		{"Size", summary.TotalSize},
		{"Duration", summary.Duration},
		{"Avg Speed", summary.Speed},
	})
	return t.Render()
}

// IdentityInfo is the box shown once the relay has assigned an identity.
type IdentityInfo struct {
	ID     string
	Invite string
}

func (i IdentityInfo) View() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Success).
		Padding(1, 2)

	rows := [][]string{
		{IconCopy + " Your ID", BoldStyle.Foreground(Primary).Render(i.ID)},
	}
	if i.Invite != "" {
		rows = append(rows, []string{IconWeb + " Invite", MutedStyle.Render(i.Invite)})
	}

	info := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return tableCellStyle
		})

	return boxStyle.Render(fmt.Sprintf("%s Ready for calls\n%s", IconSuccess, info.Render()))
}
