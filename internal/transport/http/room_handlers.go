package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codecollab/codecollab-server/internal/store"
)

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store: st,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body. The id is
// optional; a UUID is generated when the client does not supply one.
type CreateRoomRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatorEmail string `json:"creatorEmail"`
	CreatedAt    string `json:"createdAt"`
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		ID:           room.ID,
		Name:         room.Name,
		CreatorEmail: room.CreatorEmail,
		CreatedAt:    room.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func callerEmail(c *gin.Context, logger *zerolog.Logger) (string, bool) {
	v, exists := c.Get(ContextKeyEmail)
	if !exists {
		logger.Error().Msg("email not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	email, ok := v.(string)
	if !ok || email == "" {
		logger.Error().Msg("invalid email in context")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return "", false
	}
	return email, true
}

// CreateRoom handles room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	email, ok := callerEmail(c, h.log)
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	room, err := h.store.CreateRoom(c.Request.Context(), id, req.Name, email)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room id already exists"})
			return
		}
		h.log.Error().Err(err).Str("room_id", id).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_id", room.ID).Str("creator", email).Msg("room created successfully")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// GetRoom handles fetching a single room.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	id := c.Param("id")

	room, err := h.store.GetRoomByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", id).Msg("failed to get room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, roomResponse(room))
}

// DeleteRoom handles room deletion. Only the creator may delete a
// room; the stored code state and chat log go with it.
// DELETE /api/rooms/:id
func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
	email, ok := callerEmail(c, h.log)
	if !ok {
		return
	}
	id := c.Param("id")

	room, err := h.store.GetRoomByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", id).Msg("failed to get room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if room.CreatorEmail != email {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the room creator can delete this room"})
		return
	}

	if err := h.store.DeleteRoom(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", id).Msg("failed to delete room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_id", id).Str("creator", email).Msg("room deleted")
	c.Status(http.StatusNoContent)
}
