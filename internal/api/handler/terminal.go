package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/api/response"
	"github.com/prodtrack/prodtrack/internal/device"
	"github.com/prodtrack/prodtrack/internal/product"
)

// TerminalHandler serves the terminal entry point. This is where the
// classification the middleware attached actually gates something.
type TerminalHandler struct {
	products *product.Service
	logger   zerolog.Logger
}

// NewTerminalHandler creates a new TerminalHandler.
func NewTerminalHandler(products *product.Service, logger zerolog.Logger) *TerminalHandler {
	return &TerminalHandler{
		products: products,
		logger:   logger.With().Str("handler", "terminal").Logger(),
	}
}

// terminalPayload is the workspace an authorized terminal boots from.
type terminalPayload struct {
	Success    bool                               `json:"success"`
	Authorized bool                               `json:"authorized"`
	Device     *models.AuthDevice                 `json:"device"`
	Categories map[string]string                  `json:"categories"`
	Products   map[string][]models.CatalogProduct `json:"products"`
}

// Workspace handles GET /maquina - the terminal boot endpoint. The response
// is always 200: unauthorized states carry the blocking payload and the
// polling client decides what to show. An HTTP error here would make a
// tablet waiting for approval look broken.
func (h *TerminalHandler) Workspace(w http.ResponseWriter, r *http.Request) {
	auth, ok := GetDeviceAuth(r.Context())
	if !ok {
		// Route mounted without the middleware; treat as no identifier.
		auth = device.Classification{State: device.StateNoDeviceID}
	}

	switch auth.State {
	case device.StateAuthorized:
		h.serveWorkspace(w, r, auth)

	case device.StateNoDeviceID,
		device.StateChecking,
		device.StateNewDevice,
		device.StateAwaitingApproval,
		device.StateAccessDenied,
		device.StateError:
		response.JSON(w, r, http.StatusOK, models.NewAuthCheckResponse(auth))

	default:
		h.logger.Error().Str("state", string(auth.State)).Msg("unhandled classification state")
		response.JSON(w, r, http.StatusOK, models.NewAuthCheckResponse(auth))
	}
}

func (h *TerminalHandler) serveWorkspace(w http.ResponseWriter, r *http.Request, auth device.Classification) {
	catalog, err := h.products.Catalog(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("catalog load failed, serving empty workspace")
		catalog = map[string][]*product.Product{}
	}

	products := make(map[string][]models.CatalogProduct, len(catalog))
	for category, items := range catalog {
		products[category] = models.NewCatalogProducts(items)
	}

	response.JSON(w, r, http.StatusOK, terminalPayload{
		Success:    true,
		Authorized: true,
		Device:     models.NewAuthDevice(auth.Device),
		Categories: product.CategoryNames,
		Products:   products,
	})
}
