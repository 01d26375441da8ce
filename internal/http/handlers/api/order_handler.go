package api

import (
	"strings"

	"github.com/freightdesk-next/internal/http/response"
	"github.com/freightdesk-next/internal/repository"
	"github.com/freightdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrder 创建采购订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var input service.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	order, err := h.OrderService.CreatePurchaseOrder(input, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ImportOrders 批量导入采购订单
func (h *Handler) ImportOrders(c *gin.Context) {
	var inputs []service.OrderInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if len(inputs) == 0 {
		response.BadRequest(c, "导入列表为空")
		return
	}
	results := h.OrderService.ImportOrders(inputs, actorFrom(c))
	response.Success(c, results)
}

// ListOrders 分页查询采购订单
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := repository.PurchaseOrderListFilter{
		Page:         page,
		PageSize:     pageSize,
		OrderNo:      strings.TrimSpace(c.Query("order_no")),
		CustomerRef:  strings.TrimSpace(c.Query("customer_ref")),
		SupplierCode: strings.TrimSpace(c.Query("supplier_code")),
		ClientCode:   strings.TrimSpace(c.Query("client_code")),
		StorerKey:    strings.TrimSpace(c.Query("storer_key")),
		Status:       strings.TrimSpace(c.Query("status")),
		Scope:        parseScope(c),
	}
	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 获取采购订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateLineQuantity 修改订单行订购数量
func (h *Handler) UpdateLineQuantity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	line, err := h.OrderService.UpdateLineQuantity(id, body.Quantity, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, line)
}

// ReconcileLines 手工触发订单行数量重算
func (h *Handler) ReconcileLines(c *gin.Context) {
	var body struct {
		LineIDs []uint `json:"line_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	lines, err := h.ReconcileService.Recompute(body.LineIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, lines)
}
