package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/freightdesk-next/internal/http/response"
	"github.com/freightdesk-next/internal/provider"
	"github.com/freightdesk-next/internal/repository"
	"github.com/freightdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler API 处理器
type Handler struct {
	*provider.Container
}

// New 创建 API 处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// actorFrom 取出中间件写入的操作人上下文
func actorFrom(c *gin.Context) service.Actor {
	value, ok := c.Get("actor")
	if ok {
		if actor, ok := value.(service.Actor); ok {
			return actor
		}
	}
	requestID := ""
	if raw, ok := c.Get("request_id"); ok {
		if id, ok := raw.(string); ok {
			requestID = id
		}
	}
	return service.Actor{RequestID: requestID}
}

// parseIDParam 解析路径参数中的 ID
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "无效的 ID: "+raw)
		return 0, false
	}
	return uint(id), true
}

// parsePagination 解析分页参数
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// parseScope 解析查询参数中的数据范围
func parseScope(c *gin.Context) repository.Scope {
	if supplier := strings.TrimSpace(c.Query("scope_supplier")); supplier != "" {
		return repository.ScopeBySupplier(supplier)
	}
	if client := strings.TrimSpace(c.Query("scope_client")); client != "" {
		return repository.ScopeByClient(client)
	}
	if storers := strings.TrimSpace(c.Query("scope_storer_keys")); storers != "" {
		keys := make([]string, 0)
		for _, key := range strings.Split(storers, ",") {
			if trimmed := strings.TrimSpace(key); trimmed != "" {
				keys = append(keys, trimmed)
			}
		}
		return repository.ScopeByStorerKeys(keys)
	}
	return repository.ScopeAll()
}

// 服务层错误按类别映射到业务状态码
var notFoundErrors = []error{
	service.ErrOrderNotFound,
	service.ErrLineNotFound,
	service.ErrConsignmentNotFound,
	service.ErrPackageNotFound,
	service.ErrConsoleNotFound,
}

var badRequestErrors = []error{
	service.ErrCustomerRefRequired,
	service.ErrOrderLineInvalid,
	service.ErrQuantityInvalid,
	service.ErrPackagingTypeRequired,
	service.ErrPackageCountInvalid,
	service.ErrRejectionCodeInvalid,
	service.ErrStepPayloadInvalid,
	service.ErrPickupAddressRequired,
	service.ErrConsoleNoRequired,
}

var conflictErrors = []error{
	service.ErrCustomerRefExists,
	service.ErrLineLocked,
	service.ErrOrderLocked,
	service.ErrPackageMixedDangerousGoods,
	service.ErrPackageMixedFulfillment,
	service.ErrPackageMixedDGClass,
	service.ErrPackageClosedLine,
	service.ErrStatusTransitionInvalid,
	service.ErrConsignmentNotEditable,
	service.ErrStepOrderViolation,
	service.ErrStepIncomplete,
	service.ErrTooManyOrders,
	service.ErrSupplierClientMismatch,
	service.ErrDocumentsMissing,
	service.ErrComplianceIncomplete,
	service.ErrAllocationMissing,
	service.ErrConsoleNotAssigned,
	service.ErrConsignmentNoPackages,
	service.ErrLineNotSelected,
	service.ErrReconcileNegative,
	service.ErrQuantityImmutable,
}

// handleServiceError 将服务层错误写入响应
func handleServiceError(c *gin.Context, err error) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			response.NotFound(c, err.Error())
			return
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			response.BadRequest(c, err.Error())
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			response.Conflict(c, err.Error())
			return
		}
	}
	response.Error(c, response.CodeInternal, "服务器内部错误")
	_ = c.Error(err)
}
