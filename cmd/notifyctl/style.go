package main

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
)

var (
	colorOK   = lipgloss.Color("#00F19F")
	colorFail = lipgloss.Color("#FF0026")
	colorDim  = lipgloss.Color("#666666")
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim)
)

func printOK(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, okStyle.Render("✓ "+msg))
}

func printFail(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, failStyle.Render("✗ "+msg))
}

func printField(w io.Writer, label string, value any) {
	_, _ = fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("%-10s", label))+" "+fmt.Sprint(value))
}
