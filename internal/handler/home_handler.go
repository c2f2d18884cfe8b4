package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/dto"
	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/pkg/response"
)

type homeService interface {
	Home(ctx context.Context) (*dto.HomeResponse, bool, error)
}

// HomeHandler serves the public landing payload.
type HomeHandler struct {
	service homeService
}

// NewHomeHandler constructs a HomeHandler.
func NewHomeHandler(svc homeService) *HomeHandler {
	return &HomeHandler{service: svc}
}

// Home godoc
// @Summary Landing page
// @Description Platform totals and up to six featured courses
// @Tags Home
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *HomeHandler) Home(c *gin.Context) {
	home, cacheHit, err := h.service.Home(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, home, nil, middleware.ExtractMeta(c))
}
