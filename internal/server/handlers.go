package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/RyanBlaney/bpm-analyzer/pkg/audio"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
	"github.com/RyanBlaney/bpm-analyzer/pkg/output"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to disk
const multipartMemory = 32 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the BPM Prediction API!",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePredict stores the uploaded file, analyzes it and returns the
// report. The temporary copy is always removed.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.WithFields(logging.Fields{
		"function":   "handlePredict",
		"request_id": RequestID(r.Context()),
	})

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d MB", s.config.MaxUploadMB))
			return
		}
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing 'file' in form")
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, filepath.Ext(header.Filename), RequestID(r.Context()))
	if err != nil {
		logger.Error(err, "Failed to save upload")
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save temporary file: %v", err))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove temporary file", logging.Fields{"path": path, "error": err.Error()})
		}
	}()

	signal, err := s.decoder.DecodeFile(path, s.decodeOpts)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), signal)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	logger.Info("Prediction served", logging.Fields{
		"filename": header.Filename,
		"size":     header.Size,
		"bpm":      result.BPM,
		"beats":    len(result.BeatTimes),
	})
	writeJSON(w, http.StatusOK, output.NewReport(result, false))
}

func (s *Server) saveUpload(src io.Reader, ext, requestID string) (string, error) {
	dir := s.config.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}

	dst, err := os.CreateTemp(dir, "bpm-"+requestID+"-*"+ext)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// writeAnalysisError maps input problems to 400 and everything else to 500
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch audio.ErrorCode(err) {
	case audio.ErrCodeInvalidSignal, audio.ErrCodeDecoding:
		status = http.StatusBadRequest
	}
	s.logger.Error(err, "Analysis request failed", logging.Fields{
		"status": status,
		"code":   audio.ErrorCode(err),
	})
	writeDetail(w, status, fmt.Sprintf("Error processing audio file: %v", err))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
