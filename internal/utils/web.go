package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
	"github.com/itchan-dev/boardapi/internal/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Message string `json:"message"`
}

// WriteErrorAndStatusCode writes err as a JSON message. Untyped errors become
// a 500 with a generic message and are logged.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		WriteJSON(w, e.StatusCode, errorResponse{Message: e.Message})
		return
	}
	logger.Log.Error("unhandled error", "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorResponse{Message: "An unexpected error occurred."})
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorResponse{Message: msg})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte("\n"))
}

func GetIP(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}

// DecodeValidate decodes a JSON body into body and validates its struct tags.
// An empty body decodes as {}.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil && !errors.Is(err, io.EOF) {
		logger.Log.Debug("invalid json body", "error", err)
		return internal_errors.Validation("Body is invalid json")
	}
	return Validate(body)
}

// Validate checks validator tags on body and reports the failed fields.
func Validate(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return internal_errors.Validation("Validation failed: " + strings.Join(msgs, "; "))
}
