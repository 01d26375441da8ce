package models

import (
	"time"

	"gorm.io/gorm"
)

// PurchaseOrderLine 采购订单行表
// 数量守恒不变量：Quantity = OpenQuantity + ProcessedQuantity + FulfilledQuantity。
type PurchaseOrderLine struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                              // 主键
	PurchaseOrderID     uint           `gorm:"index;not null" json:"purchase_order_id"`           // 所属采购订单ID
	LineNo              int            `gorm:"not null" json:"line_no"`                           // 行号
	SKU                 string         `gorm:"index;not null" json:"sku"`                         // 物料编码
	Description         string         `gorm:"type:varchar(500)" json:"description,omitempty"`    // 物料描述
	Quantity            int            `gorm:"not null" json:"quantity"`                          // 订购数量（存在分配后不可修改）
	OpenQuantity        int            `gorm:"not null;default:0" json:"open_quantity"`           // 未分配数量
	ProcessedQuantity   int            `gorm:"not null;default:0" json:"processed_quantity"`      // 已装箱未签收数量
	FulfilledQuantity   int            `gorm:"not null;default:0" json:"fulfilled_quantity"`      // 已签收/已送达数量
	Status              string         `gorm:"index;not null" json:"status"`                      // 行状态（由状态机推导）
	FulfillmentType     string         `gorm:"index;not null" json:"fulfillment_type"`            // 履约类型（bts/bto）
	DangerousGoods      bool           `gorm:"not null;default:false" json:"dangerous_goods"`     // 是否危险品
	DangerousGoodsClass string         `gorm:"type:varchar(20)" json:"dangerous_goods_class"`     // 危险品类别
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}
