package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/trebuchet-org/daovote/internal/domain/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	labelStyle     = color.New(color.Bold)
	headerStyle    = color.New(color.Bold, color.FgHiWhite)
	addressStyle   = color.New(color.FgWhite)
	amountStyle    = color.New(color.FgCyan)
	timestampStyle = color.New(color.Faint)
	mutedStyle     = color.New(color.Faint)
	forStyle       = color.New(color.FgGreen)
	againstStyle   = color.New(color.FgRed)

	statusStyles = map[models.ProposalStatus]*color.Color{
		models.ProposalStatusOpen:     color.New(color.FgYellow, color.Bold),
		models.ProposalStatusEnded:    color.New(color.FgBlue, color.Bold),
		models.ProposalStatusAccepted: color.New(color.FgGreen, color.Bold),
		models.ProposalStatusRejected: color.New(color.FgRed, color.Bold),
	}

	titleCaser = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Extract just the error message part (after the last colon if it's an error chain)
	parts := strings.Split(message, ": ")
	msg := parts[len(parts)-1]

	// Capitalize first letter
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// JSON writes v as indented JSON
func JSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// StatusLabel renders a proposal status in its color
func StatusLabel(status models.ProposalStatus) string {
	style, ok := statusStyles[status]
	if !ok {
		return string(status)
	}
	return style.Sprint(titleCaser.String(string(status)))
}

// KindLabel renders a proposal kind for humans
func KindLabel(kind models.ProposalKind) string {
	return titleCaser.String(strings.ReplaceAll(string(kind), "-", " "))
}

func formatAmount(n *big.Int, symbol string) string {
	if n == nil {
		n = new(big.Int)
	}
	if symbol == "" {
		return amountStyle.Sprint(n.String())
	}
	return amountStyle.Sprintf("%s %s", n.String(), symbol)
}

func formatAddress(addr common.Address) string {
	return addressStyle.Sprint(addr.Hex())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// formatRelative describes end relative to now, e.g. "in 2d 3h" or "5m ago"
func formatRelative(end, now time.Time) string {
	if end.After(now) {
		return "in " + humanDuration(end.Sub(now))
	}
	return humanDuration(now.Sub(end)) + " ago"
}

func humanDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 && days == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// getRelativePath returns the relative path from current directory
func getRelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}

	return relPath
}

// newTable returns a borderless table writer
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}
	return t
}

// writeFields prints aligned "label: value" lines
func writeFields(out io.Writer, fields [][2]string) {
	t := newTable()
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	for _, f := range fields {
		t.AppendRow(table.Row{labelStyle.Sprint(f[0] + ":"), f[1]})
	}
	fmt.Fprintln(out, t.Render())
}
