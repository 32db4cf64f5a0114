// pkg/utils/printcolor.go
package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

/*
hexColorPattern matches valid 6-character hex color codes.
Example: #FFFFFF, #000000
*/
var hexColorPattern = regexp.MustCompile(`^#?([A-Fa-f0-9]{6})$`)

const resetColor = "\033[0m"

// Console colors shared by the CLI and the log handler.
const (
	HexDebug   = "#808080" // Gray
	HexInfo    = "#00FFFF" // Cyan
	HexWarn    = "#FFD700" // Gold
	HexError   = "#FF0000" // Red
	HexSuccess = "#32CD32" // LimeGreen
)

/*
hexToANSI converts a hex color code to an ANSI escape code for 24-bit "true color".
Example: #FF5733 → "\033[38;2;255;87;51m"
*/
func hexToANSI(hex string) string {
	if !hexColorPattern.MatchString(hex) {
		return resetColor
	}

	hex = strings.TrimPrefix(hex, "#")

	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)

	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

// Colorize wraps text in the ANSI sequence for hexColor followed by a reset.
func Colorize(text, hexColor string) string {
	return hexToANSI(hexColor) + text + resetColor
}

/*
LevelColor maps a log level to the console color used to render it.

  - Debug: gray
  - Info:  cyan
  - Warn:  gold
  - Error: red
*/
func LevelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return HexError
	case level >= slog.LevelWarn:
		return HexWarn
	case level >= slog.LevelInfo:
		return HexInfo
	default:
		return HexDebug
	}
}

/*
FprintColored writes a colored line to the provided writer.

Parameters:
  - w: The io.Writer where output is written.
  - prefix: The string to print in the specified color.
  - secondary: The string printed uncolored immediately after the prefix.
  - hexColor: The color in hex string format (e.g., "#FF5733").

Usage:

	FprintColored(os.Stdout, "Wrote report: ", path, HexSuccess)
*/
func FprintColored(w io.Writer, prefix, secondary, hexColor string) {
	if secondary != "" {
		fmt.Fprintf(w, "%s%s\n", Colorize(prefix, hexColor), secondary)
	} else {
		fmt.Fprintln(w, Colorize(prefix, hexColor))
	}
}

/*
PrintColored prints a colored prefix and an optional plain secondary string to stdout.
An empty prefix prints nothing.
*/
func PrintColored(prefix, secondary, hexColor string) {
	if prefix == "" {
		return
	}
	FprintColored(os.Stdout, prefix, secondary, hexColor)
}
