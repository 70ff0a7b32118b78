package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Formatter renders data in one output format
type Formatter interface {
	Format(data any) ([]byte, error)
}

// NewFormatter returns the formatter for a format name
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return &JSONFormatter{Indent: true}, nil
	case "yaml", "yml":
		return &YAMLFormatter{}, nil
	case "table":
		return &TableFormatter{MaxBeats: 16}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// JSONFormatter writes JSON
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(data any) ([]byte, error) {
	var out []byte
	var err error
	if f.Indent {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return append(out, '\n'), nil
}

// YAMLFormatter writes YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// TableFormatter writes aligned key/value rows. Reports list at most
// MaxBeats beat times; zero lists all of them.
type TableFormatter struct {
	MaxBeats int
}

func (f *TableFormatter) Format(data any) ([]byte, error) {
	var rows [][2]string
	switch v := data.(type) {
	case *Report:
		rows = f.reportRows(v)
	case map[string]any:
		rows = mapRows(v)
	default:
		return nil, fmt.Errorf("table output not supported for %T", data)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *TableFormatter) reportRows(r *Report) [][2]string {
	bpm := "not detected"
	if r.BPM > 0 {
		bpm = fmt.Sprintf("%d", r.BPM)
	}
	rows := [][2]string{
		{header("bpm"), bpm},
		{header("duration"), fmt.Sprintf("%.3fs", r.Duration)},
		{header("beats"), fmt.Sprintf("%d", len(r.BeatTimes))},
		{header("beat_times"), formatTimes(r.BeatTimes, f.MaxBeats)},
		{header("waveform_points"), fmt.Sprintf("%d", len(r.WaveformData))},
	}
	if d := r.Details; d != nil {
		rows = append(rows,
			[2]string{header("sample_rate"), fmt.Sprintf("%d Hz", d.SampleRate)},
			[2]string{header("frames"), fmt.Sprintf("%d", d.Frames)},
			[2]string{header("estimated_bpm"), fmt.Sprintf("%.2f", d.EstimatedBPM)},
			[2]string{header("tempo_confidence"), fmt.Sprintf("%.3f", d.TempoConfidence)},
			[2]string{header("elapsed_ms"), fmt.Sprintf("%d", d.ElapsedMs)},
		)
		if d.Source != "" {
			rows = append([][2]string{{header("source"), d.Source}}, rows...)
		}
	}
	return rows
}

func mapRows(m map[string]any) [][2]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{header(k), fmt.Sprintf("%v", m[k])})
	}
	return rows
}

// header title-cases a snake_case key. Casers keep state so each call
// gets its own.
func header(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

func formatTimes(times []float64, limit int) string {
	if len(times) == 0 {
		return "-"
	}
	shown := times
	if limit > 0 && len(times) > limit {
		shown = times[:limit]
	}
	parts := make([]string, len(shown))
	for i, t := range shown {
		parts[i] = fmt.Sprintf("%.2f", math.Round(t*100)/100)
	}
	s := strings.Join(parts, ", ")
	if len(shown) < len(times) {
		s += fmt.Sprintf(", ... (+%d)", len(times)-len(shown))
	}
	return s
}
