package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gamma-omg/lexi-cards/internal/pkg/serr"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

var ErrTrailingData = errors.New("unexpected data after JSON payload")

// ReadJSON decodes a single JSON value from the request body.
// An empty body reads as an empty object.
func ReadJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	return nil
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(resp)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: msg})
}

// RequestURL is the URL as the client sent it, before any prefix stripping.
func RequestURL(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.String()
}

func HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []any{
		"error", err,
		"method", r.Method,
		"url", RequestURL(r),
		"remote_addr", r.RemoteAddr,
	}

	var se *serr.ServiceError
	if errors.As(err, &se) {
		for k, v := range se.Env {
			attrs = append(attrs, k, v)
		}
		attrs = append(attrs, "status", se.StatusCode)

		if se.StatusCode >= http.StatusInternalServerError {
			slog.Error("request error", attrs...)
		} else {
			slog.Warn("request error", attrs...)
		}

		WriteError(w, se.StatusCode, se.Msg)
		return
	}

	slog.Error("request error", attrs...)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}
