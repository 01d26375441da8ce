package models

import (
	"time"

	"gorm.io/gorm"
)

// PurchaseOrder 采购订单表
type PurchaseOrder struct {
	ID           uint           `gorm:"primarykey" json:"id"`                               // 主键
	OrderNo      string         `gorm:"uniqueIndex;not null" json:"order_no"`               // 供应商侧订单编号
	CustomerRef  string         `gorm:"uniqueIndex;not null" json:"customer_ref"`           // 客户参考号（全局唯一）
	SupplierCode string         `gorm:"index;not null" json:"supplier_code"`                // 供应商编码
	ClientCode   string         `gorm:"index;not null" json:"client_code"`                  // 客户编码
	StorerKey    string         `gorm:"index;not null" json:"storer_key"`                   // 仓储方标识
	Status       string         `gorm:"index;not null" json:"status"`                       // 订单状态（由状态机推导，禁止手工设置）
	OpenQuantity int            `gorm:"not null;default:0" json:"open_quantity"`            // 未分配数量合计（由 Reconciler 推导）
	Remark       string         `gorm:"type:varchar(500)" json:"remark,omitempty"`          // 备注
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	Lines []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID" json:"lines,omitempty"` // 订单行
}

// TableName 指定表名
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}
