// ABOUTME: Terminal formatting helpers shared by the views
// ABOUTME: Colored headers, status badges, tables and placeholders

package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/2389/gigboard/internal/model"
)

var (
	headerColor  = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	labelColor   = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

// Placeholders for empty profile fields.
const (
	NotProvided = "Not provided"
	NoBio       = "No bio yet"
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "  %s\n", title)
	headerColor.Fprintf(w, "  %s\n", strings.Repeat("-", utf8.RuneCountInString(title)))
}

func printStatus(w io.Writer, errMsg, flash string) {
	if flash != "" {
		successColor.Fprintf(w, "  %s\n", flash)
	}
	if errMsg != "" {
		errorColor.Fprintf(w, "  %s\n", errMsg)
	}
}

func printField(w io.Writer, label, value string) {
	labelColor.Fprintf(w, "  %s: ", label)
	fmt.Fprintln(w, value)
}

// printBlock prints a labeled multi-line value indented under its label.
func printBlock(w io.Writer, label, value string) {
	labelColor.Fprintf(w, "  %s:\n", label)
	for _, line := range strings.Split(value, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func statusBadge(s model.ApplicationStatus) string {
	label := strings.ToUpper(string(s))
	if !s.Valid() {
		return label
	}
	switch s {
	case model.StatusAccepted:
		return color.GreenString(label)
	case model.StatusRejected:
		return color.RedString(label)
	case model.StatusWithdrawn:
		return dimColor.Sprint(label)
	default:
		return color.YellowString(label)
	}
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02, 2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 02, 2006 15:04")
}
