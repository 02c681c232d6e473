package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green, confirmed steps
	ColorWarning   = lipgloss.Color("#FFB800") // yellow, warnings
	ColorError     = lipgloss.Color("#FF4444") // red, failed steps
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan, addresses and hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold, ids and amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray, metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue, borders
	ColorChain     = lipgloss.Color("#9B5DE5") // purple, chain names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink, selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the w3wrap ASCII banner.
func Banner() string {
	art := `
  ██╗    ██╗██████╗ ██╗    ██╗██████╗  █████╗ ██████╗
  ██║    ██║╚════██╗██║    ██║██╔══██╗██╔══██╗██╔══██╗
  ██║ █╗ ██║ █████╔╝██║ █╗ ██║██████╔╝███████║██████╔╝
  ██║███╗██║ ╚═══██╗██║███╗██║██╔══██╗██╔══██║██╔═══╝
  ╚███╔███╔╝██████╔╝╚███╔███╔╝██║  ██║██║  ██║██║
   ╚══╝╚══╝ ╚═════╝  ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝`

	tagline := StyleMeta.Render("     ERC20 / ERC721 → ERC1155 wrapper client")
	return StyleChain.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a chain name.
func ChainName(c string) string { return StyleChain.Render(c) }

// Hint formats a suggestion for what to run next.
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

// Info formats a neutral notice.
func Info(msg string) string { return StyleAddress.Render("ℹ " + msg) }

// Hash formats a transaction hash, shortened unless full is set.
func Hash(h string, full bool) string {
	if !full {
		h = TruncateAddr(h)
	}
	return StyleAddress.Render(h)
}

// TruncateAddr shortens an address or hash for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// Pad left-aligns s within width display columns, truncating with an
// ellipsis when it does not fit.
func Pad(s string, width int) string {
	r := []rune(s)
	switch {
	case len(r) == width:
		return s
	case len(r) < width:
		return s + strings.Repeat(" ", width-len(r))
	case width <= 1:
		return string(r[:width])
	default:
		return string(r[:width-1]) + "…"
	}
}
