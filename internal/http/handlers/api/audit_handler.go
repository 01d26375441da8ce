package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/freightdesk-next/internal/http/response"
	"github.com/freightdesk-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListEntityAudit 获取实体的全部审计轨迹
func (h *Handler) ListEntityAudit(c *gin.Context) {
	entityKind := strings.TrimSpace(c.Param("entity_kind"))
	if entityKind == "" {
		response.BadRequest(c, "实体类型为空")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trails, err := h.AuditService.ListByEntity(entityKind, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, trails)
}

// ListAudit 按条件分页查询审计轨迹
func (h *Handler) ListAudit(c *gin.Context) {
	page, pageSize := parsePagination(c)
	entityID, _ := strconv.ParseUint(c.Query("entity_id"), 10, 64)
	actorID, _ := strconv.ParseUint(c.Query("actor_id"), 10, 64)
	filter := repository.AuditTrailListFilter{
		Page:       page,
		PageSize:   pageSize,
		EntityKind: strings.TrimSpace(c.Query("entity_kind")),
		EntityID:   uint(entityID),
		ActorID:    uint(actorID),
	}
	if raw := strings.TrimSpace(c.Query("created_from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "无效的起始时间: "+raw)
			return
		}
		filter.CreatedFrom = &t
	}
	if raw := strings.TrimSpace(c.Query("created_to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "无效的结束时间: "+raw)
			return
		}
		filter.CreatedTo = &t
	}
	trails, total, err := h.AuditService.List(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, trails, response.NewPagination(page, pageSize, total))
}
