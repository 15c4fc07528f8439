// # internal/report/report.go

// Package report renders run outcomes for the console: one confirmation
// line on success, or an error block with enough context to act on.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"distgate/internal/gate"
	"distgate/internal/manifest"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34D399")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))
)

// Success writes the single confirmation line.
func Success(w io.Writer, res gate.Result) {
	fmt.Fprintf(w, "%s %d declared files validated in %s\n",
		successStyle.Render("package ok:"), res.DeclaredCount, res.Duration.Round(time.Millisecond))
}

// Failure writes the error block for a failed run.
func Failure(w io.Writer, f *gate.Failure) {
	var b strings.Builder

	b.WriteString(failStyle.Render(fmt.Sprintf("[%s] %s", f.Code, f.Message)))
	b.WriteByte('\n')

	if f.Err != nil {
		b.WriteString(f.Err.Error())
		b.WriteByte('\n')
	}

	if f.Code == gate.CodeUnexpectedFiles {
		for _, path := range f.Paths {
			b.WriteString("  ")
			b.WriteString(pathStyle.Render(path))
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "declare these in the %q list of %s, or remove them from the build output\n",
			"files", manifest.ManifestName)
	}

	io.WriteString(w, b.String())
}
