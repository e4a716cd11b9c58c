package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the startup banner for Rewind.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Subtle gradient, cool blues into violet
	s1 := termenv.String("                    _           _ ").Foreground(p.Color("#38bdf8"))
	s2 := termenv.String("  _ __ _____      _(_)_ __   __| |").Foreground(p.Color("#60a5fa"))
	s3 := termenv.String(" | '__/ _ \\ \\ /\\ / / | '_ \\ / _` |").Foreground(p.Color("#818cf8"))
	s4 := termenv.String(" | | |  __/\\ V  V /| | | | | (_| |").Foreground(p.Color("#a78bfa"))
	s5 := termenv.String(" |_|  \\___| \\_/\\_/ |_|_| |_|\\__,_|").Foreground(p.Color("#c084fc"))
	tag := termenv.String("a time-travel repl  v" + version).Faint()

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
	fmt.Println(" " + tag.String())
	fmt.Println()
}
