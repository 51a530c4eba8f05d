package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ivdgroup/medlab-backend/api/responses"
	"github.com/ivdgroup/medlab-backend/api/validators"
	exhibitionsvc "github.com/ivdgroup/medlab-backend/internal/exhibitions"
	pkgerrors "github.com/ivdgroup/medlab-backend/pkg/errors"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
)

// ExhibitionList serves the public trade-show listing, newest first.
func ExhibitionList(svc exhibitionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exhibition service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]exhibitionsvc.View, 0, len(rows))
		for _, row := range rows {
			views = append(views, exhibitionsvc.ViewOf(row))
		}
		responses.WriteSuccess(w, map[string]any{"exhibitions": views})
	}
}

// ExhibitionDetail serves a single trade-show entry by id.
func ExhibitionDetail(svc exhibitionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exhibition service unavailable"))
			return
		}

		id, err := exhibitionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exhibition, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exhibitionsvc.ViewOf(*exhibition))
	}
}

// ExhibitionCreate adds a trade-show entry.
func ExhibitionCreate(svc exhibitionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exhibition service unavailable"))
			return
		}

		var payload exhibitionsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exhibition, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, exhibitionsvc.ViewOf(*exhibition))
	}
}

// ExhibitionUpdate replaces a trade-show entry.
func ExhibitionUpdate(svc exhibitionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exhibition service unavailable"))
			return
		}

		id, err := exhibitionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload exhibitionsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exhibition, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exhibitionsvc.ViewOf(*exhibition))
	}
}

// ExhibitionDelete removes a trade-show entry.
func ExhibitionDelete(svc exhibitionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exhibition service unavailable"))
			return
		}

		id, err := exhibitionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func exhibitionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "exhibitionId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid exhibition id")
	}
	return id, nil
}
