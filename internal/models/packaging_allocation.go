package models

import "time"

// PackagingAllocation 包裹分配表（包裹 × 采购订单行，Reconciler 汇总的边）
// 冗余危险品标记与履约类型，用于装箱时的同质性快速校验；数量为 0 的分配会被删除而非保留。
type PackagingAllocation struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                                        // 主键
	PackagingID         uint      `gorm:"index:idx_allocation_edge,unique;not null" json:"packaging_id"`               // 包裹ID
	PurchaseOrderLineID uint      `gorm:"index:idx_allocation_edge,unique;index;not null" json:"purchase_order_line_id"` // 采购订单行ID
	ConsignmentID       uint      `gorm:"index;not null" json:"consignment_id"`                                        // 托运单ID
	AllocatedQty        int       `gorm:"not null" json:"allocated_qty"`                                               // 分配数量
	DangerousGoods      bool      `gorm:"not null;default:false" json:"dangerous_goods"`                               // 危险品标记（行快照）
	FulfillmentType     string    `gorm:"not null" json:"fulfillment_type"`                                            // 履约类型（行快照）
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                                                     // 创建时间
	UpdatedAt           time.Time `gorm:"index" json:"updated_at"`                                                     // 更新时间
}

// TableName 指定表名
func (PackagingAllocation) TableName() string {
	return "packaging_allocations"
}
