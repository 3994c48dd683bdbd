package server

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/logging"
	"github.com/user/emojicringe-go/respond"
)

// recoverer turns a handler panic into the generic 500 JSON body.
// http.ErrAbortHandler is re-panicked so net/http can abort the response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logging.FromRequest(r).WithFields(logrus.Fields{
				"panic": rvr,
				"stack": string(debug.Stack()),
			}).Error("request panicked")

			appErr := apperror.NewInternalError("panic recovered", fmt.Errorf("%v", rvr))
			respond.JSON(w, appErr.StatusCode(), appErr.ToResponse(respond.IsVerbose(r.Context())))
		}()
		next.ServeHTTP(w, r)
	})
}
