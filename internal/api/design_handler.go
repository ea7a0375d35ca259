package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/decorly/decorly-backend/internal/core"
)

const (
	// maxUploadBytes caps the source photo at 10 MB.
	maxUploadBytes = 10 << 20

	defaultPageLimit = 10
)

// DesignHandler handles generation requests and the design collection.
type DesignHandler struct {
	designService core.DesignService
}

// NewDesignHandler creates a new DesignHandler.
func NewDesignHandler(ds core.DesignService) *DesignHandler {
	return &DesignHandler{designService: ds}
}

// mapDesignErrorToStatus maps errors from core.DesignService to HTTP status codes.
func mapDesignErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrUpgradeRequired):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: "Free design limit reached. Please upgrade to continue.", Code: "UPGRADE_REQUIRED"}
	case errors.Is(err, core.ErrMissingFields):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Details: err.Error()}
	case errors.Is(err, core.ErrInvalidPagination):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Details: err.Error()}
	case errors.Is(err, core.ErrDesignNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrDesignNotFound.Error()}
	case errors.Is(err, core.ErrForbiddenAccess):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbiddenAccess.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrGenerationFailed), errors.Is(err, core.ErrImageStoreFailed):
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: "Design generation is temporarily unavailable. Please try again."}
	default:
		log.Printf("Internal Server Error in DesignHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// GenerateDesign handles POST /designs (multipart/form-data)
func (h *DesignHandler) GenerateDesign(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image file is required", Details: err.Error()})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image file exceeds the 10MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read image file", Details: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read image file", Details: err.Error()})
		return
	}

	mimeType := http.DetectContentType(data)
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	input := core.GenerateDesignInput{
		Image:        dataURI,
		RoomType:     c.PostForm("roomType"),
		DesignStyle:  c.PostForm("designStyle"),
		ColorTone:    c.PostForm("colorTone"),
		CustomPrompt: c.PostForm("customPrompt"),
	}

	design, err := h.designService.Generate(c.Request.Context(), userID.(string), input)
	if err != nil {
		mapDesignErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, design)
}

// ListDesigns handles GET /designs?page=&limit=
func (h *DesignHandler) ListDesigns(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "page must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "limit must be an integer"})
		return
	}

	pageResult, err := h.designService.List(c.Request.Context(), userID.(string), page, limit)
	if err != nil {
		mapDesignErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResult)
}

// DeleteDesign handles DELETE /designs/:designId
func (h *DesignHandler) DeleteDesign(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}
	designID := c.Param("designId")
	if designID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Design ID is required in path"})
		return
	}

	if err := h.designService.Delete(c.Request.Context(), userID.(string), designID); err != nil {
		mapDesignErrorToStatus(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
