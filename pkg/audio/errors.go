package audio

import "errors"

// ErrInvalidSignal is matched (via errors.Is) by every AnalysisError whose
// code is ErrCodeInvalidSignal
var ErrInvalidSignal = errors.New("invalid signal")

// Stage names the pipeline step that produced an error
type Stage string

const (
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StageFrames   Stage = "frames"
	StageOnset    Stage = "onset"
	StageTempo    Stage = "tempo"
	StageBeats    Stage = "beats"
	StageWaveform Stage = "waveform"
)

// Common error codes
const (
	ErrCodeInvalidSignal = "INVALID_SIGNAL"
	ErrCodeInvalidConfig = "INVALID_CONFIG"
	ErrCodeDecoding      = "DECODING_FAILED"
	ErrCodeCancelled     = "CANCELLED"
)

// AnalysisError represents a failure of one analysis stage
type AnalysisError struct {
	Stage   Stage  `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AnalysisError) Error() string {
	msg := string(e.Stage) + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports invalid-signal errors as ErrInvalidSignal
func (e *AnalysisError) Is(target error) bool {
	return target == ErrInvalidSignal && e.Code == ErrCodeInvalidSignal
}

// NewAnalysisError creates a new analysis error
func NewAnalysisError(stage Stage, code, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Stage:   stage,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode extracts the code of an AnalysisError anywhere in err's chain
func ErrorCode(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
