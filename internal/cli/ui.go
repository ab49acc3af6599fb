package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkocik/stocklens/internal/analyzer"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1).
		MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(72)

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3B82F6"))

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))
)

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner() {
	banner := `
 ███████╗████████╗ ██████╗  ██████╗██╗  ██╗██╗     ███████╗███╗   ██╗███████╗
 ██╔════╝╚══██╔══╝██╔═══██╗██╔════╝██║ ██╔╝██║     ██╔════╝████╗  ██║██╔════╝
 ███████╗   ██║   ██║   ██║██║     █████╔╝ ██║     █████╗  ██╔██╗ ██║███████╗
 ╚════██║   ██║   ██║   ██║██║     ██╔═██╗ ██║     ██╔══╝  ██║╚██╗██║╚════██║
 ███████║   ██║   ╚██████╔╝╚██████╗██║  ██╗███████╗███████╗██║ ╚████║███████║
 ╚══════╝   ╚═╝    ╚═════╝  ╚═════╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═══╝╚══════╝

               📈 Stock Market Data Download & Analysis 📈
`

	welcomeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true).
		Align(lipgloss.Center).
		Width(80)

	fmt.Print(welcomeStyle.Render(banner))
	fmt.Println()
	fmt.Println(infoStyle.Render("  Type 'exit' at any prompt to quit."))
	fmt.Println()
}

// DisplayRunHeader shows what is about to be downloaded.
func DisplayRunHeader(tickers []string, period string, outputDir string) {
	header := fmt.Sprintf("📊 Tickers: %s | 📅 Period: %s | 📁 Output: %s",
		strings.Join(tickers, ", "), period, outputDir)
	fmt.Println(headerStyle.Render(header))
}

// DisplayRunSummary prints the per-ticker outcome of a finished run.
func DisplayRunSummary(report *analyzer.Report) {
	fmt.Println()
	fmt.Println(titleStyle.Render("📋 Run Summary"))

	for _, res := range report.Results {
		if res.Failed() {
			fmt.Println(errorStyle.Render(fmt.Sprintf("  ❌ %s: no output", res.Symbol)))
			continue
		}
		line := fmt.Sprintf("  ✅ %s: %d file(s)", res.Symbol, len(res.Files))
		if len(res.Errors) > 0 {
			line += fmt.Sprintf(" (%d categor%s failed)", len(res.Errors), pluralYies(len(res.Errors)))
		}
		fmt.Println(successStyle.Render(line))
	}
	fmt.Println()
}

// DisplayError shows an error message
func DisplayError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Error: %s", err.Error())))
}

// DisplayInfo shows an info message
func DisplayInfo(message string) {
	fmt.Println(infoStyle.Render(fmt.Sprintf("ℹ️  %s", message)))
}

// DisplaySuccess shows a success message
func DisplaySuccess(message string) {
	fmt.Println(successStyle.Render(fmt.Sprintf("✅ %s", message)))
}

// DisplayWarning shows a warning message
func DisplayWarning(message string) {
	fmt.Println(warnStyle.Render(fmt.Sprintf("⚠️  %s", message)))
}

func pluralYies(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
