// Package respond holds the JSON response helpers shared by every handler
// package: writing bodies, writing AppErrors and decoding request bodies.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/logging"
)

type verboseKey struct{}

// Verbose marks every request passing through it so that Error includes the
// underlying cause of server errors. It is enabled in development only.
func Verbose(enabled bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), verboseKey{}, enabled)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsVerbose reports whether the request was marked by Verbose(true).
func IsVerbose(ctx context.Context) bool {
	v, _ := ctx.Value(verboseKey{}).(bool)
	return v
}

// JSON writes data with the given status. A nil data writes no body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	// Headers are already out; an encode error means the client went away.
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes err as an apperror.ErrorResponse. Errors that are not AppErrors
// become Internal errors. Server errors are logged with the request's logger.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.IsServerError() {
		logging.FromRequest(r).WithError(appErr).Error("request failed")
	}

	JSON(w, appErr.StatusCode(), appErr.ToResponse(IsVerbose(r.Context())))
}

// Decode reads a JSON body into dst. An empty body leaves dst untouched so
// that validation reports the missing fields by name.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.NewBadRequestError("Invalid JSON body", err)
	}
	return nil
}

// Message is the {"message": ...} body used by confirmations.
type Message struct {
	Message string `json:"message" example:"Logged out successfully"`
}
