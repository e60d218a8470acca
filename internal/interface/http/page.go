package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/domain/search"
	"github.com/yanqian/aqi-search/internal/interface/view"
	apperrors "github.com/yanqian/aqi-search/pkg/errors"
)

// PageHandler serves the server rendered search page. Each request drives its
// own controller against the in-process lookup service.
type PageHandler struct {
	fetcher search.Fetcher
	opts    view.Options
	logger  *slog.Logger
}

// NewPageHandler constructs the HTML handler.
func NewPageHandler(svc aqi.Service, opts view.Options, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		fetcher: serviceFetcher{svc: svc},
		opts:    opts,
		logger:  logger.With("component", "http.page"),
	}
}

// Index renders the idle page.
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, view.Page{View: view.Present(search.Idle(), h.opts)})
}

// Search submits the city query parameter and renders the resulting state.
func (h *PageHandler) Search(c *gin.Context) {
	query := c.Query("city")
	controller := search.NewController(h.fetcher, h.logger)
	state := controller.Submit(c.Request.Context(), query)
	h.render(c, view.Page{Query: query, View: view.Present(state, h.opts)})
}

func (h *PageHandler) render(c *gin.Context, page view.Page) {
	var buf bytes.Buffer
	if err := view.RenderHTML(&buf, page); err != nil {
		h.logger.Error("render page failed", "error", err)
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "render_failed", "Internal Server Error", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// serviceFetcher adapts the lookup service to the controller's Fetcher, turning
// service failures into the same errors the HTTP client would produce.
type serviceFetcher struct {
	svc aqi.Service
}

func (f serviceFetcher) Fetch(ctx context.Context, city string) (aqi.Reading, error) {
	reading, err := f.svc.Lookup(ctx, city)
	if err == nil {
		return reading, nil
	}
	if message, ok := apperrors.PublicMessage(err); ok {
		return aqi.Reading{}, &search.RemoteError{Status: statusForCode(apperrors.CodeOf(err)), Message: message}
	}
	return aqi.Reading{}, &search.TransportError{Err: err}
}
