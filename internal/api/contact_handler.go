package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactHandler serves the public contact form and the admin inbox.
type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Submit is the only unauthenticated write endpoint in the API.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Name, email and message are required")
		return
	}

	contact, err := h.contactService.Submit(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "Message received", "contact": contact})
}

func (h *ContactHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	contacts, err := h.contactService.List(c.Request.Context(), limit)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"contacts": contacts})
}

func (h *ContactHandler) Get(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	contact, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			abortWithError(c, http.StatusNotFound, "Message not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"contact": contact})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return
	}
	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			abortWithError(c, http.StatusNotFound, "Message not found")
			return
		}
		abortServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Message deleted"})
}
