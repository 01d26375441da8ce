package service

import (
	"strconv"

	"github.com/freightdesk-next/internal/models"
)

// 审计快照：每种受跟踪实体提供一个显式的标量字段快照函数。
// Recorder 只对快照做差异比较，不触碰实体本身。

// SnapshotPurchaseOrder 采购订单审计快照
func SnapshotPurchaseOrder(order *models.PurchaseOrder) map[string]string {
	if order == nil {
		return nil
	}
	return map[string]string{
		"order_no":      order.OrderNo,
		"customer_ref":  order.CustomerRef,
		"supplier_code": order.SupplierCode,
		"client_code":   order.ClientCode,
		"storer_key":    order.StorerKey,
		"status":        order.Status,
		"open_quantity": strconv.Itoa(order.OpenQuantity),
	}
}

// SnapshotPurchaseOrderLine 采购订单行审计快照
func SnapshotPurchaseOrderLine(line *models.PurchaseOrderLine) map[string]string {
	if line == nil {
		return nil
	}
	return map[string]string{
		"sku":                line.SKU,
		"quantity":           strconv.Itoa(line.Quantity),
		"open_quantity":      strconv.Itoa(line.OpenQuantity),
		"processed_quantity": strconv.Itoa(line.ProcessedQuantity),
		"fulfilled_quantity": strconv.Itoa(line.FulfilledQuantity),
		"status":             line.Status,
		"fulfillment_type":   line.FulfillmentType,
	}
}

// SnapshotConsignment 托运单审计快照
func SnapshotConsignment(consignment *models.Consignment) map[string]string {
	if consignment == nil {
		return nil
	}
	consoleID := ""
	if consignment.ConsoleID != nil {
		consoleID = strconv.FormatUint(uint64(*consignment.ConsoleID), 10)
	}
	return map[string]string{
		"consignment_no": consignment.ConsignmentNo,
		"status":         consignment.Status,
		"step":           strconv.Itoa(consignment.Step),
		"console_id":     consoleID,
		"pickup_address": consignment.PickupAddress,
		"rejection_code": consignment.RejectionCode,
	}
}

// SnapshotPackaging 包裹审计快照
func SnapshotPackaging(pkg *models.ConsignmentPackaging) map[string]string {
	if pkg == nil {
		return nil
	}
	return map[string]string{
		"package_no":     pkg.PackageNo,
		"packaging_type": pkg.PackagingType,
		"weight":         pkg.Weight.String(),
		"status":         pkg.Status,
	}
}

// SnapshotConsole 集运批次审计快照
func SnapshotConsole(console *models.Console) map[string]string {
	if console == nil {
		return nil
	}
	return map[string]string{
		"console_no":   console.ConsoleNo,
		"carrier_code": console.CarrierCode,
		"status":       console.Status,
	}
}

// auditFieldTitles 字段名到可读标题的映射
var auditFieldTitles = map[string]string{
	"order_no":           "订单编号",
	"customer_ref":       "客户参考号",
	"supplier_code":      "供应商",
	"client_code":        "客户",
	"storer_key":         "仓储方",
	"status":             "状态",
	"open_quantity":      "未分配数量",
	"processed_quantity": "已装箱数量",
	"fulfilled_quantity": "已履约数量",
	"quantity":           "订购数量",
	"sku":                "物料编码",
	"fulfillment_type":   "履约类型",
	"consignment_no":     "托运单编号",
	"step":               "创建步骤",
	"console_id":         "集运批次",
	"pickup_address":     "提货地址",
	"rejection_code":     "拒收原因",
	"package_no":         "包裹编号",
	"packaging_type":     "包装类型",
	"weight":             "重量",
	"console_no":         "批次编号",
	"carrier_code":       "承运商",
}

func auditFieldTitle(fieldName string) string {
	if title, ok := auditFieldTitles[fieldName]; ok {
		return title
	}
	return fieldName
}
