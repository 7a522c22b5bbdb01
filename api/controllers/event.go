package controllers

import (
	"net/http"

	"github.com/00anuyh/souvenir-backend/api/middleware"
	"github.com/00anuyh/souvenir-backend/api/responses"
	"github.com/00anuyh/souvenir-backend/internal/event"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/logger"
)

// EventEligible reports whether the caller holds a valid purchase token.
func EventEligible(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		eligible, err := svc.Eligible(ctx, middleware.UsernameFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"eligible": eligible})
	}
}

// EventDraw consumes the purchase token and runs the prize draw.
func EventDraw(svc event.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event service unavailable"))
			return
		}

		result, err := svc.Draw(ctx, middleware.UsernameFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
