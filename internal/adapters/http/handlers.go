package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dkeye/peerchat/internal/app/orch"
	"github.com/dkeye/peerchat/internal/config"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// pinger is implemented by stores that can report their own health.
type pinger interface {
	Ping(ctx context.Context) error
}

type roomHandlers struct {
	orch    *orch.Orchestrator
	history config.HistoryConfig
}

// RoomView is a room plus its live presence.
type RoomView struct {
	*domain.Room
	ActiveCount int `json:"activeCount"`
}

type MessagesResponse struct {
	Messages []*domain.Message `json:"messages"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func (h *roomHandlers) view(room *domain.Room) RoomView {
	return RoomView{Room: room, ActiveCount: h.orch.Registry.PresenceCount(room.ID)}
}

func (h *roomHandlers) health(c *gin.Context) {
	resp := gin.H{"status": "OK", "timestamp": time.Now().UTC()}
	if p, ok := h.orch.Directory.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("store health")
			resp["status"] = "DEGRADED"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *roomHandlers) list(c *gin.Context) {
	rooms, err := h.orch.Directory.ListRooms(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch rooms"})
		return
	}
	out := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, h.view(room))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h *roomHandlers) get(c *gin.Context) {
	room, err := h.orch.Directory.GetRoom(c.Request.Context(), domain.RoomID(c.Param("id")))
	if err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(room))
}

func (h *roomHandlers) messages(c *gin.Context) {
	limit, err := queryInt(c, "limit", h.history.DefaultLimit)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid limit"})
		return
	}
	limit = min(limit, h.history.MaxLimit)
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid offset"})
		return
	}

	msgs, err := h.orch.Directory.RoomMessages(c.Request.Context(), domain.RoomID(c.Param("id")), limit, offset)
	if err != nil {
		h.roomError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{Messages: msgs, Limit: limit, Offset: offset})
}

func (h *roomHandlers) roomError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	log.Error().Err(err).Str("module", "adapters.http").Str("room", c.Param("id")).Msg("room lookup")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch room"})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
