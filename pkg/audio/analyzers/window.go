package analyzers

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
)

// WindowType selects the taper applied to each analysis frame
type WindowType string

const (
	WindowHann        WindowType = "hann"
	WindowHamming     WindowType = "hamming"
	WindowBlackman    WindowType = "blackman"
	WindowRectangular WindowType = "rectangular"
)

// ParseWindowType accepts the names used in configuration files
func ParseWindowType(name string) (WindowType, error) {
	switch WindowType(strings.ToLower(strings.TrimSpace(name))) {
	case WindowHann, "hanning", "":
		return WindowHann, nil
	case WindowHamming:
		return WindowHamming, nil
	case WindowBlackman:
		return WindowBlackman, nil
	case WindowRectangular, "rect", "none":
		return WindowRectangular, nil
	default:
		return "", fmt.Errorf("unknown window function %q", name)
	}
}

// Coefficients returns an n-point window of type w
func (w WindowType) Coefficients(n int) []float64 {
	switch w {
	case WindowHamming:
		return window.Hamming(n)
	case WindowBlackman:
		return window.Blackman(n)
	case WindowRectangular:
		return window.Rectangular(n)
	default:
		return window.Hann(n)
	}
}
