package service

import (
	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
)

// deriveLineStatus 根据订单行当前数量推导行状态
// 状态永远是数量的函数，不允许在别处手工写入。
func deriveLineStatus(line models.PurchaseOrderLine) string {
	if line.Status == constants.OrderStatusCancelled {
		return constants.OrderStatusCancelled
	}
	if line.OpenQuantity == 0 && line.ProcessedQuantity == 0 {
		return constants.OrderStatusClosed
	}
	if line.FulfilledQuantity > 0 {
		return constants.OrderStatusPartiallyFulfilled
	}
	return constants.OrderStatusOpen
}

// deriveOrderStatus 汇总订单行状态推导采购订单状态
func deriveOrderStatus(lines []models.PurchaseOrderLine, currentStatus string) string {
	if len(lines) == 0 {
		return currentStatus
	}
	var closedCount int
	var cancelledCount int
	var anyFulfilled bool
	for _, line := range lines {
		switch line.Status {
		case constants.OrderStatusClosed:
			closedCount++
		case constants.OrderStatusCancelled:
			cancelledCount++
		}
		if line.FulfilledQuantity > 0 {
			anyFulfilled = true
		}
	}
	if cancelledCount == len(lines) {
		return constants.OrderStatusCancelled
	}
	if closedCount+cancelledCount == len(lines) {
		return constants.OrderStatusClosed
	}
	if anyFulfilled || closedCount > 0 {
		return constants.OrderStatusPartiallyFulfilled
	}
	return constants.OrderStatusOpen
}

// orderOpenQuantity 汇总订单行的未分配数量
func orderOpenQuantity(lines []models.PurchaseOrderLine) int {
	var total int
	for _, line := range lines {
		total += line.OpenQuantity
	}
	return total
}
