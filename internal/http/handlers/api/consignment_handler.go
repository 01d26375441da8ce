package api

import (
	"strconv"
	"strings"

	"github.com/freightdesk-next/internal/http/response"
	"github.com/freightdesk-next/internal/repository"
	"github.com/freightdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateConsignmentDraft 创建草稿托运单
func (h *Handler) CreateConsignmentDraft(c *gin.Context) {
	consignment, err := h.WorkflowService.CreateDraft(actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, consignment)
}

// AdvanceConsignmentStep 保存并推进创建步骤
func (h *Handler) AdvanceConsignmentStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		response.BadRequest(c, "无效的步骤: "+c.Param("step"))
		return
	}
	var payload service.StepPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	consignment, err := h.WorkflowService.AdvanceStep(id, step, payload, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, consignment)
}

// GetConsignmentStep 获取某一步骤的已保存数据
func (h *Handler) GetConsignmentStep(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		response.BadRequest(c, "无效的步骤: "+c.Param("step"))
		return
	}
	view, err := h.WorkflowService.GetStep(id, step)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// SetConsignmentLineCompliance 填写托运单行合规信息
func (h *Handler) SetConsignmentLineCompliance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload service.CompliancePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if err := h.WorkflowService.SetLineCompliance(id, payload, actorFrom(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// SubmitConsignment 提交草稿托运单进入审批
func (h *Handler) SubmitConsignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	events, err := h.WorkflowService.Submit(id, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"events": events})
}

// ListConsignments 分页查询托运单
func (h *Handler) ListConsignments(c *gin.Context) {
	page, pageSize := parsePagination(c)
	ownerID, _ := strconv.ParseUint(c.Query("owner_id"), 10, 64)
	consoleID, _ := strconv.ParseUint(c.Query("console_id"), 10, 64)
	filter := repository.ConsignmentListFilter{
		Page:          page,
		PageSize:      pageSize,
		ConsignmentNo: strings.TrimSpace(c.Query("consignment_no")),
		Status:        strings.TrimSpace(c.Query("status")),
		OwnerID:       uint(ownerID),
		ConsoleID:     uint(consoleID),
		Scope:         parseScope(c),
	}
	consignments, total, err := h.ConsignmentRepo.List(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, consignments, response.NewPagination(page, pageSize, total))
}

// GetConsignment 获取托运单详情
func (h *Handler) GetConsignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	consignment, err := h.ConsignmentRepo.GetByID(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if consignment == nil {
		response.NotFound(c, service.ErrConsignmentNotFound.Error())
		return
	}
	response.Success(c, consignment)
}
