package handler

import (
	"io"
	"net/http"

	"github.com/morphcute/kim-dispo-vape-shop/internal/auth"
	"github.com/morphcute/kim-dispo-vape-shop/internal/payments"
	"github.com/morphcute/kim-dispo-vape-shop/internal/service"
	"github.com/morphcute/kim-dispo-vape-shop/internal/storage"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// maxPosterBytes caps poster uploads at 5 MB.
const maxPosterBytes = 5 << 20

// AdminHandler serves the back-office endpoints: dashboard overview,
// login, poster uploads and payment provider status.
type AdminHandler struct {
	overviewService service.OverviewServiceInterface
	catalogService  service.CatalogServiceInterface
	authService     *auth.Service
	payments        payments.ServiceInterface
	storage         *storage.SupabaseClient
	logger          *logger.Logger
}

func NewAdminHandler(
	overviewService service.OverviewServiceInterface,
	catalogService service.CatalogServiceInterface,
	authService *auth.Service,
	paymentService payments.ServiceInterface,
	storageClient *storage.SupabaseClient,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		overviewService: overviewService,
		catalogService:  catalogService,
		authService:     authService,
		payments:        paymentService,
		storage:         storageClient,
		logger:          log.WithComponent("admin_handler"),
	}
}

// GetOverview handles GET /api/admin/overview
func (h *AdminHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.overviewService.GetOverview()
	if err != nil {
		h.logger.Error("Failed to build overview", "error", err)
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to build overview")
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, overview)
}

type loginRequest struct {
	Token string `json:"token"`
}

// Login handles POST /api/admin/login. A valid shared token is traded
// for a session id when the session store is available.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, ok := h.authService.Login(r.Context(), req.Token)
	if !ok {
		h.logger.Warn("Admin login rejected")
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, result)
}

// UploadPoster handles POST /api/admin/brands/{id}/poster. The raw image
// goes to object storage; the public URL is saved on the brand.
func (h *AdminHandler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	if h.storage == nil {
		writeErrorResponse(h.logger, w, http.StatusServiceUnavailable, "Poster uploads are not configured")
		return
	}

	if _, err := h.catalogService.GetBrand(brandID); err != nil {
		h.logger.Warn("Poster upload for missing brand", "brand_id", brandID, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPosterBytes))
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Image too large or unreadable")
		return
	}
	defer r.Body.Close()

	publicURL, err := h.storage.UploadPoster(data, r.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("Poster upload failed", "brand_id", brandID, "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadGateway, "Poster upload failed")
		return
	}

	if err := h.catalogService.SetBrandPoster(brandID, publicURL); err != nil {
		h.logger.Error("Failed to save poster URL", "brand_id", brandID, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Poster uploaded", "brand_id", brandID)
	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"poster": publicURL})
}

// PaymentStatus handles GET /api/payments/status
func (h *AdminHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(h.logger, w, http.StatusOK, h.payments.Status())
}
