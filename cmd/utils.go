package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Terminal colors
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorBold   = "\033[1m"
)

// PerformanceTimer records named event durations for a command run
type PerformanceTimer struct {
	start  time.Time
	events map[string]time.Time
	done   map[string]time.Duration
}

func NewPerformanceTimer() *PerformanceTimer {
	return &PerformanceTimer{
		start:  time.Now(),
		events: make(map[string]time.Time),
		done:   make(map[string]time.Duration),
	}
}

func (pt *PerformanceTimer) StartEvent(name string) {
	pt.events[name] = time.Now()
}

func (pt *PerformanceTimer) EndEvent(name string) {
	if start, ok := pt.events[name]; ok {
		pt.done[name] = time.Since(start)
	}
}

// GetDuration returns the duration of a finished event, or zero
func (pt *PerformanceTimer) GetDuration(name string) time.Duration {
	return pt.done[name]
}

func (pt *PerformanceTimer) GetTotalDuration() time.Duration {
	return time.Since(pt.start)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func printHeader(title, subject string) {
	fmt.Printf("\n%s%s%s%s\n", ColorBold, ColorBlue, strings.ToUpper(title), ColorReset)
	fmt.Println(strings.Repeat("=", 60))
	if subject != "" {
		fmt.Printf("%sInput:%s %s\n", ColorCyan, ColorReset, subject)
	}
}

func printStep(num int, title string) {
	fmt.Printf("\n%s[%d] %s%s\n", ColorPurple, num, title, ColorReset)
}

func printSuccess(format string, args ...any) {
	fmt.Printf("   %s✓%s %s\n", ColorGreen, ColorReset, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Printf("   %s⚠%s %s\n", ColorYellow, ColorReset, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Printf("   %s✗%s %s\n", ColorRed, ColorReset, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("   %s•%s %s\n", ColorWhite, ColorReset, fmt.Sprintf(format, args...))
}

func printResult(name string, success bool) {
	if success {
		fmt.Printf("   %-20s %s✓ PASS%s\n", name, ColorGreen, ColorReset)
	} else {
		fmt.Printf("   %-20s %s✗ FAIL%s\n", name, ColorRed, ColorReset)
	}
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func getConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "bpm-analyzer", "bpm-analyzer.yaml") + " (not found, defaults in use)"
}
