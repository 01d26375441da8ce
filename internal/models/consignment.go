package models

import (
	"time"

	"gorm.io/gorm"
)

// Consignment 托运单表
// 草稿阶段使用临时编号（TMP 序号），首次离开草稿态时替换为正式编号（CSG 序号）。
type Consignment struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                  // 主键
	ConsignmentNo        string         `gorm:"uniqueIndex;not null" json:"consignment_no"`            // 托运单编号
	Status               string         `gorm:"index;not null" json:"status"`                          // 托运单状态
	Step                 int            `gorm:"not null;default:1" json:"step"`                        // 创建流程当前步骤（1..5）
	OwnerID              uint           `gorm:"index;not null" json:"owner_id"`                        // 创建人ID
	ConsoleID            *uint          `gorm:"index" json:"console_id,omitempty"`                     // 所属集运批次ID
	SupplierCode         string         `gorm:"index" json:"supplier_code"`                            // 供应商编码
	ClientCode           string         `gorm:"index" json:"client_code"`                              // 客户编码
	StorerKey            string         `gorm:"index" json:"storer_key"`                               // 仓储方标识
	PickupAddress        string         `gorm:"type:varchar(500)" json:"pickup_address,omitempty"`     // 提货地址
	PickupScheduledAt    *time.Time     `gorm:"index" json:"pickup_scheduled_at,omitempty"`            // 预约提货时间
	HasCommercialInvoice bool           `gorm:"not null;default:false" json:"has_commercial_invoice"`  // 是否已附商业发票
	HasPackingList       bool           `gorm:"not null;default:false" json:"has_packing_list"`        // 是否已附装箱单
	RejectionCode        string         `gorm:"type:varchar(50)" json:"rejection_code,omitempty"`      // 拒收原因代码
	SubmittedAt          *time.Time     `gorm:"index" json:"submitted_at,omitempty"`                   // 提交时间
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	Lines    []ConsignmentLine      `gorm:"foreignKey:ConsignmentID" json:"lines,omitempty"`    // 关联订单行（含合规信息）
	Packages []ConsignmentPackaging `gorm:"foreignKey:ConsignmentID" json:"packages,omitempty"` // 包裹
}

// TableName 指定表名
func (Consignment) TableName() string {
	return "consignments"
}
