package v1

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/duynhne/registro-facial/internal/core/domain"
	logicv1 "github.com/duynhne/registro-facial/internal/logic/v1"
	"github.com/duynhne/registro-facial/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Error messages returned to clients.
const (
	msgNoPhoto         = "No se ha proporcionado ninguna foto."
	msgNoPhotoAnalyze  = "No se ha proporcionado ninguna foto para analizar."
	msgInvalidFilename = "Nombre de archivo inválido."
	msgNoChanges       = "No se proporcionaron datos para actualizar."
	msgNotFound        = "Perfil no encontrado."
	msgInternal        = "Error interno del servidor."
	photoField         = "photo"
)

// RegistryHandler handles HTTP requests for the stub recognition backend
type RegistryHandler struct {
	service *logicv1.RegistryService
	logger  *zap.Logger
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(service *logicv1.RegistryService, logger *zap.Logger) *RegistryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryHandler{service: service, logger: logger}
}

// RegisterRoutes mounts the backend API on r.
func (h *RegistryHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Index)
	r.POST("/register", h.Register)
	r.POST("/analyze", h.Analyze)
	r.GET("/profiles", h.ListProfiles)
	r.PUT("/profiles/:id", h.UpdateProfile)
	r.DELETE("/profiles/:id", h.DeleteProfile)
	r.GET("/photos/:name", h.Photo)
}

// startSpan opens the request span and installs its context on c.Request.
func (h *RegistryHandler) startSpan(c *gin.Context) (trace.Span, *zap.Logger) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	c.Request = c.Request.WithContext(ctx)
	return span, middleware.LoggerFromGin(c, h.logger)
}

// Index handles GET /
func (h *RegistryHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Servidor de reconocimiento facial activo."})
}

// readPhoto returns the uploaded photo part. ok is false when the part is missing
// or unreadable.
func readPhoto(c *gin.Context) (filename string, data []byte, ok bool) {
	header, err := c.FormFile(photoField)
	if err != nil {
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, false
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return "", nil, false
	}
	return header.Filename, data, true
}

// parseFlag accepts true, 1 and t in any case.
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t":
		return true
	}
	return false
}

// Register handles POST /register
func (h *RegistryHandler) Register(c *gin.Context) {
	span, logger := h.startSpan(c)
	defer span.End()

	filename, photo, ok := readPhoto(c)
	if !ok {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoPhoto})
		return
	}

	in := logicv1.RegisterInput{
		Fields: domain.ProfileFields{
			Nombre:           c.PostForm(domain.FieldNombre),
			Apellidos:        c.PostForm(domain.FieldApellidos),
			CodigoEstudiante: c.PostForm(domain.FieldCodigoEstudiante),
			Correo:           c.PostForm(domain.FieldCorreo),
			Requisitoriado:   parseFlag(c.PostForm("requisitoriado")),
		},
		Filename: filename,
		Photo:    photo,
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	profile, err := h.service.Register(c.Request.Context(), in)
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to register profile", zap.Error(err))

		switch {
		case errors.Is(err, logicv1.ErrInvalidFilename):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidFilename})
		case errors.Is(err, logicv1.ErrNoPhoto):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoPhoto})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		}
		return
	}

	logger.Info("Profile registered", zap.String("profile_id", profile.ID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": profile.ID, "data": profile})
}

// Analyze handles POST /analyze
func (h *RegistryHandler) Analyze(c *gin.Context) {
	span, logger := h.startSpan(c)
	defer span.End()

	_, photo, ok := readPhoto(c)
	if !ok {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoPhotoAnalyze})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), photo)
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to analyze photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	logger.Info("Photo analyzed", zap.Bool("match", result.Match))
	c.JSON(http.StatusOK, result)
}

// ListProfiles handles GET /profiles
func (h *RegistryHandler) ListProfiles(c *gin.Context) {
	span, logger := h.startSpan(c)
	defer span.End()

	profiles, err := h.service.List(c.Request.Context())
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to list profiles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// UpdateProfile handles PUT /profiles/:id
func (h *RegistryHandler) UpdateProfile(c *gin.Context) {
	span, logger := h.startSpan(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("profile.id", id))

	var changes map[string]any
	if err := c.ShouldBindJSON(&changes); err != nil || len(changes) == 0 {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoChanges})
		return
	}

	_, err := h.service.Update(c.Request.Context(), id, changes)
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to update profile", zap.String("profile_id", id), zap.Error(err))

		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		case errors.Is(err, domain.ErrInvalidValue):
			c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err)})
		case errors.Is(err, logicv1.ErrNoChanges):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoChanges})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		}
		return
	}

	logger.Info("Profile updated", zap.String("profile_id", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Perfil %s actualizado.", id)})
}

// DeleteProfile handles DELETE /profiles/:id
func (h *RegistryHandler) DeleteProfile(c *gin.Context) {
	span, logger := h.startSpan(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("profile.id", id))

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		span.RecordError(err)
		logger.Error("Failed to delete profile", zap.String("profile_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	logger.Info("Profile deleted", zap.String("profile_id", id))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Perfil %s eliminado.", id)})
}

// Photo handles GET /photos/:name
func (h *RegistryHandler) Photo(c *gin.Context) {
	name := c.Param("name")
	data, ok := h.service.Photo(c.Request.Context(), name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Foto no encontrada."})
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}
