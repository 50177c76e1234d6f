package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bobsgarage/api/internal/cache"
	"bobsgarage/api/internal/models"
	"bobsgarage/api/internal/repository"
)

type serviceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	PriceCents  int64   `json:"priceCents" binding:"min=0"`
	ImageURL    *string `json:"imageUrl"`
}

type serviceResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"priceCents"`
	ImageURL    *string `json:"imageUrl"`
}

func toServiceResponse(svc models.Service) serviceResponse {
	return serviceResponse{
		ID:          svc.ID,
		Name:        svc.Name,
		Description: svc.Description,
		PriceCents:  svc.PriceCents,
		ImageURL:    svc.ImageURL,
	}
}

func (h HandlerSet) ListServices(c *gin.Context) {
	var cached []serviceResponse
	if err := h.content.Get(c.Request.Context(), cache.KeyServices, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"services": cached})
		return
	}

	services, err := h.services.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		resp = append(resp, toServiceResponse(svc))
	}
	h.content.Set(c.Request.Context(), cache.KeyServices, resp)

	c.JSON(http.StatusOK, gin.H{"services": resp})
}

func (h HandlerSet) GetService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_service_id"})
		return
	}

	svc, err := h.services.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": toServiceResponse(svc)})
}

func (h HandlerSet) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := models.Service{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
	}
	if err := h.services.Create(c.Request.Context(), &svc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyServices)

	c.JSON(http.StatusCreated, gin.H{"service": toServiceResponse(svc)})
}

func (h HandlerSet) UpdateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_service_id"})
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := models.Service{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
	}
	if err := h.services.Update(c.Request.Context(), svc); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyServices)

	c.JSON(http.StatusOK, gin.H{"service": toServiceResponse(svc)})
}

func (h HandlerSet) DeleteService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_service_id"})
		return
	}

	if err := h.services.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyServices)

	c.Status(http.StatusNoContent)
}
