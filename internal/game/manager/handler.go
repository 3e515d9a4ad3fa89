package manager

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"RedCatch/internal/game/engine"
)

type Handler struct {
	mgr *GameManager
}

func NewHandler(mgr *GameManager) *Handler {
	return &Handler{mgr: mgr}
}

// Routes 挂到已经过 JWT 校验的路由组上
func (h *Handler) Routes(rg gin.IRoutes) {
	rg.GET("/rooms", h.List)
	rg.POST("/rooms", h.Create)
	rg.POST("/rooms/quick", h.Quick)
	rg.POST("/rooms/:id/join", h.Join)
	rg.POST("/rooms/:id/start", h.Start)
	rg.POST("/rooms/:id/restart", h.Restart)
	rg.POST("/rooms/:id/leave", h.Leave)
	rg.GET("/rooms/:id/history", h.History)
}

func roomParam(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("id")))
}

func statusOf(err error) int {
	switch errors.Cause(err) {
	case ErrRoomNotFound:
		return http.StatusNotFound
	case ErrNotHost, ErrNotSeated:
		return http.StatusForbidden
	case ErrRoomFull, ErrAlreadyStarted, ErrAlreadySeated, ErrRoundInProgress:
		return http.StatusConflict
	case errBadPayload:
		return http.StatusBadRequest
	}
	if engine.Reason(err) != "internal" {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": Reason(err), "message": err.Error()})
}

// GET /rooms
func (h *Handler) List(c *gin.Context) {
	rooms, err := h.mgr.ListOpenRooms(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// POST /rooms
func (h *Handler) Create(c *gin.Context) {
	info, err := h.mgr.CreateRoom(c.Request.Context(), c.GetString("handle"), c.GetString("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// POST /rooms/quick
func (h *Handler) Quick(c *gin.Context) {
	info, err := h.mgr.QuickJoin(c.Request.Context(), c.GetString("handle"), c.GetString("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// POST /rooms/:id/join
func (h *Handler) Join(c *gin.Context) {
	info, err := h.mgr.JoinRoom(c.Request.Context(), roomParam(c), c.GetString("handle"), c.GetString("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// POST /rooms/:id/start  手牌只走 websocket，这里返回公开部分
func (h *Handler) Start(c *gin.Context) {
	res, err := h.mgr.StartRoom(c.Request.Context(), roomParam(c), c.GetString("handle"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /rooms/:id/restart
func (h *Handler) Restart(c *gin.Context) {
	res, err := h.mgr.RestartRoom(c.Request.Context(), roomParam(c), c.GetString("handle"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /rooms/:id/leave
func (h *Handler) Leave(c *gin.Context) {
	if err := h.mgr.LeaveSeat(c.Request.Context(), roomParam(c), c.GetString("handle")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /rooms/:id/history?limit=10
func (h *Handler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_limit"})
		return
	}
	rounds, err := h.mgr.History(c.Request.Context(), roomParam(c), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}
