// internal/app/features/errors/render.go
package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"go.uber.org/zap"
)

// ErrorLogger logs server-side failures with request context and answers
// the client with a JSON error.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	_, _, uid, ok := authz.UserCtx(r)
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if ok {
		fs = append(fs, zap.String("user_id", uid.Hex()))
	}
	return fs
}

// LogServerError logs err under msg and writes a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, e.fields(r, err)...)
	Write(w, http.StatusInternalServerError, userMsg)
}

// LogFormError logs err and writes code with userMsg, echoing the
// submitted form.
func (e *ErrorLogger) LogFormError(w http.ResponseWriter, r *http.Request, code int, msg string, err error, userMsg string, form any, fields map[string]string) {
	if code >= http.StatusInternalServerError {
		e.Log.Error(msg, e.fields(r, err)...)
	} else {
		e.Log.Debug(msg, e.fields(r, err)...)
	}
	WriteJSON(w, code, Body{Error: userMsg, Form: form, Fields: fields})
}

// Recoverer turns a handler panic into a logged 500 JSON response.
func (e *ErrorLogger) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				e.LogServerError(w, r, "handler panic", fmt.Errorf("%v", rec), "An internal error occurred.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
