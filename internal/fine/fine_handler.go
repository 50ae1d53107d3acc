package fine

import (
	"encoding/json"
	"net/http"
	"time"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/hierarchy"
	"hr-backoffice/internal/shared/apperror"
	"hr-backoffice/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("fine.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("fine.handler")
	}
	return &Handler{service: service, logger: l}
}

// NewHandlerWithRedis lets the decision endpoints complete the
// idempotency protocol: cache the response and release the lock.
func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, logger...)
	h.rdb = rdb
	return h
}

func actorIdentity(c *gin.Context) hierarchy.Identity {
	return hierarchy.Identity{
		UserID:      c.GetString("user_id"),
		EmployeeID:  c.GetString("employee_id"),
		AccountRole: c.GetString("role"),
		IsAdmin:     c.GetBool("is_admin"),
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("fine request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create fine validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorIdentity(c), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ApproveEntry(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	resp, err := h.service.ActOnEntry(
		c.Request.Context(), actorIdentity(c),
		c.Param("id"), c.Param("entryId"),
		approval.ActionApprove, "",
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RejectEntry(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req RejectFineEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http reject fine entry validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.ActOnEntry(
		c.Request.Context(), actorIdentity(c),
		c.Param("id"), c.Param("entryId"),
		approval.ActionReject, req.Remarks,
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lk := c.GetString("idempotency_lock_key"); lk != "" {
		h.rdb.Del(c.Request.Context(), lk)
	}
}

func (h *Handler) cacheIdempotentResponse(c *gin.Context, resp any) {
	if h.rdb == nil {
		return
	}
	ck := c.GetString("idempotency_cache_key")
	if ck == "" {
		return
	}
	if payload, err := json.Marshal(resp); err == nil {
		_ = h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err()
	}
}
