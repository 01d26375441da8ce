package api

import (
	"github.com/freightdesk-next/internal/http/response"
	"github.com/freightdesk-next/internal/models"

	"github.com/gin-gonic/gin"
)

type createPackagesRequest struct {
	PackagingType string        `json:"packaging_type"`
	Weight        models.Weight `json:"weight"`
	Count         int           `json:"count"`
}

// CreatePackages 在草稿托运单下批量创建包裹
func (h *Handler) CreatePackages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body createPackagesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	packages, err := h.AllocationService.CreatePackages(id, body.PackagingType, body.Weight, body.Count, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, packages)
}

// UpdatePackage 修改草稿包裹的包装类型与重量
func (h *Handler) UpdatePackage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	packageNo := c.Param("package_no")
	var body struct {
		PackagingType string        `json:"packaging_type"`
		Weight        models.Weight `json:"weight"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	if err := h.AllocationService.UpdatePackageDetails(id, packageNo, body.PackagingType, body.Weight, actorFrom(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// RemovePackage 删除草稿包裹并释放其分配
func (h *Handler) RemovePackage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.AllocationService.RemovePackage(id, c.Param("package_no"), actorFrom(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// AllocateToPackage 将订单行数量分配到包裹
func (h *Handler) AllocateToPackage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	packageNo := c.Param("package_no")
	var body struct {
		PurchaseOrderLineID uint `json:"purchase_order_line_id"`
		Quantity            int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}
	line, err := h.AllocationService.Allocate(id, packageNo, body.PurchaseOrderLineID, body.Quantity, actorFrom(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, line)
}
