package ui

// Shorthands returning the escape codes of the current theme.

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorCyan() string      { return GetCurrentTheme().Secondary }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }

// basinPalette gives every root its own color, in root-list order, so the
// same root keeps the same color across runs. The entries approximate the
// basin colors of the animation scene (dark red, royal blue, tomato,
// turquoise, ...) in the 256-color ANSI palette.
var basinPalette = []string{
	"\033[38;5;88m",
	"\033[38;5;62m",
	"\033[38;5;203m",
	"\033[38;5;44m",
	"\033[38;5;22m",
	"\033[38;5;92m",
	"\033[38;5;28m",
	"\033[38;5;118m",
	"\033[38;5;21m",
	"\033[38;5;63m",
	"\033[38;5;80m",
	"\033[38;5;67m",
	"\033[38;5;100m",
	"\033[38;5;120m",
}

// RootColor returns the escape code for the root at index in its list. A
// negative index (no root reached) maps to the error color. The palette
// wraps around, and it is empty under NoColorTheme.
func RootColor(index int) string {
	t := GetCurrentTheme()
	if t.Reset == "" {
		return ""
	}
	if index < 0 {
		return t.Error
	}
	return basinPalette[index%len(basinPalette)]
}
