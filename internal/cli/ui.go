package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ironsheep/image-maker/internal/batch"
	"github.com/ironsheep/image-maker/internal/catalog"
)

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary
	colorGreen = lipgloss.Color("35")  // Green - success
	colorGray  = lipgloss.Color("245") // Gray - secondary text
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
	colorWhite = lipgloss.Color("255") // Bright white - values
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleLabel   = lipgloss.NewStyle().Width(12).Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconInfo    = "›"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printKeyValue prints an aligned "label value" line.
func printKeyValue(w io.Writer, label string, value any) {
	fmt.Fprintln(w, "  "+styleLabel.Render(label)+styleValue.Render(fmt.Sprint(value)))
}

// printRunSummary reports a finished generation run.
func printRunSummary(w io.Writer, outDir string, m *batch.Manifest) {
	s := m.Summary
	printSuccess(w, "Generated %s samples in %s",
		styleNumber.Render(fmt.Sprint(s.Total)), styleValue.Render(outDir))
	printKeyValue(w, "run", m.RunID)
	printKeyValue(w, "seed", m.Seed)

	per := make([]string, 0, len(s.PerClass))
	for i, n := range s.PerClass {
		if i == len(s.PerClass)-1 {
			break // negatives
		}
		per = append(per, fmt.Sprintf("%d:%d", i, n))
	}
	printKeyValue(w, "per class", strings.Join(per, " "))
	printKeyValue(w, "negatives", s.Negatives())

	enabled := "none"
	if len(m.Enabled) > 0 {
		enabled = strings.Join(m.Enabled, ", ")
	}
	printKeyValue(w, "transforms", enabled)
	if m.TransparentKey != "" {
		printKeyValue(w, "key colour", m.TransparentKey)
	}
	printKeyValue(w, "elapsed", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "  "+styleDim.Render("manifest: "+batch.ManifestName))
}

// printCatalog lists the class mapping and background pool.
func printCatalog(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, styleTitle.Render("Classes"))
	for _, obj := range cat.Objects {
		fmt.Fprintf(w, "  %s %s\n", styleNumber.Render(fmt.Sprintf("%3d", obj.Class)), obj.Path)
	}
	fmt.Fprintln(w, styleTitle.Render("Backgrounds"))
	printKeyValue(w, "count", len(cat.Backgrounds))
	printInfo(w, "generate expects %d counts (%d classes + negatives)", cat.NumClasses()+1, cat.NumClasses())
}
