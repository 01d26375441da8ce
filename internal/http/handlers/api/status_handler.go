package api

import (
	"strings"

	"github.com/freightdesk-next/internal/http/response"
	"github.com/freightdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TransitionStatus 批量变更托运单状态
func (h *Handler) TransitionStatus(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if len(req.ConsignmentIDs) == 0 {
		response.BadRequest(c, "托运单 ID 列表为空")
		return
	}
	if strings.TrimSpace(req.ToStatus) == "" {
		response.BadRequest(c, "目标状态为空")
		return
	}
	events, err := h.StatusService.Transition(req, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"events": events})
}

// AssignToConsole 将托运单指派到拼箱柜
func (h *Handler) AssignToConsole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		ConsignmentIDs []uint `json:"consignment_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if len(body.ConsignmentIDs) == 0 {
		response.BadRequest(c, "托运单 ID 列表为空")
		return
	}
	events, err := h.StatusService.AssignToConsole(id, body.ConsignmentIDs, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"events": events})
}

// MarkPackagesReceived 按包裹登记目的地收货
func (h *Handler) MarkPackagesReceived(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		PackageNos []string `json:"package_nos"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if len(body.PackageNos) == 0 {
		response.BadRequest(c, "包裹编号列表为空")
		return
	}
	events, err := h.StatusService.MarkPackagesReceived(id, body.PackageNos, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"events": events})
}

// CreateConsole 创建拼箱柜
func (h *Handler) CreateConsole(c *gin.Context) {
	var body struct {
		ConsoleNo   string `json:"console_no"`
		CarrierCode string `json:"carrier_code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	console, err := h.ConsoleService.Create(body.ConsoleNo, body.CarrierCode, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, console)
}

// GetConsole 获取拼箱柜详情
func (h *Handler) GetConsole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	console, err := h.ConsoleService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, console)
}

// ListConsoles 分页查询拼箱柜
func (h *Handler) ListConsoles(c *gin.Context) {
	page, pageSize := parsePagination(c)
	consoles, total, err := h.ConsoleService.List(page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, consoles, response.NewPagination(page, pageSize, total))
}
