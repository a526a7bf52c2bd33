package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sleet-near/hello-near/client/errors"
	"github.com/sleet-near/hello-near/client/tx"
)

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrRejectedBeforeExecution):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrExecutionFailure):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, errors.ErrCredential):
		if stage, _ := errors.StageOf(err); stage == errors.StageAccessKey {
			return http.StatusForbidden
		}
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrInvalidRequest),
		stderrors.Is(err, errors.ErrSigning),
		stderrors.Is(err, errors.ErrSerialization):
		return http.StatusBadRequest
	case errors.IsTransportError(err):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, errors.ErrRPCProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error, out *tx.Outcome) error {
	resp := ErrorResponse{Error: err.Error(), Outcome: out}
	if kind := errors.KindOf(err); kind != nil {
		resp.Kind = kind.Error()
	}
	resp.Code = errors.GetErrorCode(err)
	if stage, ok := errors.StageOf(err); ok {
		resp.Stage = string(stage)
	}
	return c.JSON(StatusFor(err), resp)
}

// fail writes err, which is either an *echo.HTTPError raised by request
// parsing or a client error.
func fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		return c.JSON(he.Code, ErrorResponse{Error: fmt.Sprint(he.Message), Kind: errors.ErrInvalidRequest.Error()})
	}
	return writeError(c, err, nil)
}
