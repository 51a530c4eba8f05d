package controllers

import (
	"net/http"
	"strings"

	"github.com/ivdgroup/medlab-backend/api/responses"
	"github.com/ivdgroup/medlab-backend/api/validators"
	"github.com/ivdgroup/medlab-backend/internal/bulkorder"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
)

type bulkOrderRequest struct {
	Text  string           `json:"text"`
	Items []bulkorder.Item `json:"items" validate:"omitempty,dive"`
}

// BulkOrder resolves a pasted SKU list or a structured item list against the
// catalog. Exactly one of text or items must be supplied.
func BulkOrder(svc bulkorder.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bulk order service unavailable"))
			return
		}

		var payload bulkOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hasText := strings.TrimSpace(payload.Text) != ""
		hasItems := len(payload.Items) > 0
		if hasText == hasItems {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "provide either text or items"))
			return
		}

		var (
			result *bulkorder.Result
			err    error
		)
		if hasText {
			result, err = svc.ResolveText(r.Context(), payload.Text)
		} else {
			result, err = svc.ResolveItems(r.Context(), payload.Items)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
