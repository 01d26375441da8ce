package models

import (
	"time"

	"gorm.io/gorm"
)

// ConsignmentPackaging 托运单包裹表
// 创建时分配草稿编号（DRAFT 序号），托运单离开草稿态后替换为全局单调递增的正式编号。
type ConsignmentPackaging struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                                  // 主键
	ConsignmentID uint           `gorm:"index:idx_packaging_no,unique;index;not null" json:"consignment_id"`    // 托运单ID
	PackageNo     string         `gorm:"index:idx_packaging_no,unique;not null" json:"package_no"`              // 包裹编号（草稿号按托运单唯一，正式号全局唯一）
	PackagingType string         `gorm:"index;not null" json:"packaging_type"`                                  // 包装类型
	Weight        Weight         `gorm:"type:decimal(20,2);not null;default:0" json:"weight"`                   // 重量（kg）
	Status        string         `gorm:"index;not null" json:"status"`                                          // 包裹状态
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                        // 软删除时间

	Allocations []PackagingAllocation `gorm:"foreignKey:PackagingID" json:"allocations,omitempty"` // 行分配
}

// TableName 指定表名
func (ConsignmentPackaging) TableName() string {
	return "consignment_packagings"
}
