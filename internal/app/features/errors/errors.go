// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Status values carried in every error body.
const (
	StatusNotFound         = "not_found"
	StatusConflict         = "conflict"
	StatusHasDependents    = "has_dependents"
	StatusInvalid          = "invalid"
	StatusError            = "error"
	StatusTransferRequired = "transfer_required"
)

// Body is the JSON shape of every error response.
type Body struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Fields  []inputval.FieldError `json:"fields,omitempty"`
	Count   int64                 `json:"count,omitempty"`
}

// ErrorLogger records failures that end in a 500 so the client only sees a
// generic message.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to log.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

// Log records err with the request method and path.
func (l *ErrorLogger) Log(r *http.Request, msg string, err error) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}

// RenderBadRequest writes a 400 with msg.
func RenderBadRequest(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusBadRequest, Body{Status: StatusInvalid, Message: msg})
}

// RenderValidation writes a 400 listing every failed field.
func RenderValidation(w http.ResponseWriter, res *inputval.Result) {
	httpjson.Write(w, http.StatusBadRequest, Body{
		Status:  StatusInvalid,
		Message: res.All(),
		Fields:  res.Errors,
	})
}

// RenderNotFound writes a 404 with msg.
func RenderNotFound(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusNotFound, Body{Status: StatusNotFound, Message: msg})
}

// RenderConflict writes a 409 with msg.
func RenderConflict(w http.ResponseWriter, msg string) {
	httpjson.Write(w, http.StatusConflict, Body{Status: StatusConflict, Message: msg})
}

// RenderError maps an error from the assignment engine or a store to a
// response. Anything unrecognized is logged and reported as a 500.
func RenderError(w http.ResponseWriter, r *http.Request, errLog *ErrorLogger, err error) {
	var deps *assignment.DependentsError
	switch {
	case stderrors.As(err, &deps):
		httpjson.Write(w, http.StatusConflict, Body{
			Status:  StatusHasDependents,
			Message: "This record is still in use: " + deps.Error() + ". Reassign them first.",
			Count:   deps.Count,
		})
	case stderrors.Is(err, assignment.ErrHasDependents):
		httpjson.Write(w, http.StatusConflict, Body{
			Status:  StatusHasDependents,
			Message: "This record is still in use. Reassign its dependents first.",
		})
	case stderrors.Is(err, assignment.ErrNotFound), stderrors.Is(err, mongo.ErrNoDocuments):
		RenderNotFound(w, "The requested record was not found.")
	case stderrors.Is(err, assignment.ErrConflict):
		RenderConflict(w, "The record changed since you loaded it. Reload and try again.")
	default:
		errLog.Log(r, "request failed", err)
		httpjson.Write(w, http.StatusInternalServerError, Body{
			Status:  StatusError,
			Message: "An internal error occurred.",
		})
	}
}
