package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"slc/pkg/asm"
	"slc/pkg/compiler"
)

// Failure kinds reported in 422 responses.
const (
	KindSyntax   = "syntax"
	KindSemantic = "semantic"
	KindAssembly = "assembly"
	KindRuntime  = "runtime"
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// CompileError is a failure of the submitted program, as opposed to a bad
// request or a server fault.
type CompileError struct {
	Kind string
	Line int
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// classify tags a compiler, assembler or machine error with its kind.
func classify(err error) *CompileError {
	var ce *compiler.Error
	switch {
	case errors.As(err, &ce):
		return &CompileError{Kind: ce.Kind.String(), Line: ce.Line, Err: err}
	case errors.Is(err, asm.ErrAssembly):
		return &CompileError{Kind: KindAssembly, Err: err}
	default:
		return &CompileError{Kind: KindRuntime, Err: err}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Line  int    `json:"line,omitempty"`
}

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ce *CompileError
		if errors.As(err, &ce) {
			msg := ce.Err.Error()
			var cerr *compiler.Error
			if errors.As(ce.Err, &cerr) {
				msg = cerr.Msg
			}
			_ = c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: msg, Kind: ce.Kind, Line: ce.Line})
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, errorResponse{Error: msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
