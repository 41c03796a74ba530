package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green  — success, credits
	ColorWarning   = lipgloss.Color("#FFB800") // yellow — pending, warnings
	ColorError     = lipgloss.Color("#FF4444") // red    — errors
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan   — addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold — token values
	ColorMeta      = lipgloss.Color("#555555") // dim gray — metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue — UI chrome
	ColorNetwork   = lipgloss.Color("#9B5DE5") // purple — network names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink — selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)
)

// Success renders a green check line.
func Success(msg string) string {
	return StyleSuccess.Render("✓ " + msg)
}

// Err renders a red error line.
func Err(msg string) string {
	return StyleError.Render("✗ " + msg)
}

// Warn renders a yellow warning line.
func Warn(msg string) string {
	return StyleWarning.Render("! " + msg)
}

// Addr styles an address or hash.
func Addr(s string) string {
	return StyleAddress.Render(s)
}

// Val styles a token value.
func Val(s string) string {
	return StyleValue.Render(s)
}

// TruncateAddr shortens an address for narrow layouts: 0x1234…abcd.
func TruncateAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// KeyValueBlock renders a titled block of aligned key/value lines inside a
// border.
func KeyValueBlock(title string, pairs [][2]string) string {
	s := StyleTitle.Render(title) + "\n"
	for _, kv := range pairs {
		s += "  " + StyleMeta.Render(padRight(kv[0], 12)) + kv[1] + "\n"
	}
	return StyleBorder.Render(s)
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
