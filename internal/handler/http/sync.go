package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/repository"
	"github.com/entremotivator/Syncup/internal/service"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
	"github.com/entremotivator/Syncup/pkg/middleware"
)

// SyncHandler handles HTTP requests that trigger storefront mirroring.
type SyncHandler struct {
	service    *service.SyncService
	identities repository.IdentityRepository
	logger     *slog.Logger
}

// NewSyncHandler creates a new sync HTTP handler.
func NewSyncHandler(svc *service.SyncService, identities repository.IdentityRepository, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{service: svc, identities: identities, logger: logger}
}

// SyncReportResponse is the JSON response body for a sync run.
type SyncReportResponse struct {
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	FailedIDs []int64 `json:"failed_ids,omitempty"`
}

// Orders handles POST /api/v1/sync/orders
//
// A gateway outage mid-session is not an error for the caller: the mirror
// still holds the last synced orders, so the response degrades to a notice.
func (h *SyncHandler) Orders(w http.ResponseWriter, r *http.Request) {
	key := middleware.IdentityKeyFromContext(r.Context())
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "not authenticated"},
		})
		return
	}

	identity, err := h.identities.GetByKey(r.Context(), key)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	report, err := h.service.SyncOrders(r.Context(), identity)
	if err != nil {
		if errors.Is(err, apperrors.ErrGatewayUnavail) || errors.Is(err, apperrors.ErrConfigUnavailable) {
			h.logger.WarnContext(r.Context(), "order sync degraded to mirror",
				slog.String("identity_key", key),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusOK, response{
				Data:   reportResponse(report),
				Notice: staleDataNotice,
			})
			return
		}
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: reportResponse(report)})
}

// Products handles POST /api/v1/sync/products
func (h *SyncHandler) Products(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SyncProducts(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrGatewayUnavail) || errors.Is(err, apperrors.ErrConfigUnavailable) {
			h.logger.WarnContext(r.Context(), "product sync degraded to mirror",
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusOK, response{
				Data:   reportResponse(report),
				Notice: staleDataNotice,
			})
			return
		}
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: reportResponse(report)})
}

func reportResponse(report *domain.SyncReport) SyncReportResponse {
	if report == nil {
		return SyncReportResponse{}
	}
	return SyncReportResponse{
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		FailedIDs: report.FailedIDs,
	}
}
