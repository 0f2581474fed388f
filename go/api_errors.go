package inventoryserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	accessports "github.com/Apurer/fabric-inventory/internal/domains/access/ports"
	invapp "github.com/Apurer/fabric-inventory/internal/domains/inventory/application"
	apierrors "github.com/Apurer/fabric-inventory/internal/shared/errors"
)

// NewResponder builds the problem responder used by every inventory handler. With hideInternal
// set, 5xx responses carry a generic message instead of the error text.
func NewResponder(hideInternal bool) *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder("", mapInventoryError).WithHiddenInternalDetail(hideInternal)
}

func mapInventoryError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, invapp.ErrInvalidRequest):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrInvalidResult):
		return apierrors.ErrInvalidAdjustment.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, accessports.ErrUnknownCredential):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, invapp.ErrInvalidPolicy):
		return apierrors.ErrInvalidPolicy.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondError reports transport-level failures (binding, query parsing) with an explicit status.
func respondError(c *gin.Context, responder *apierrors.ChainedResponder, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	responder.Respond(c, problem)
}
