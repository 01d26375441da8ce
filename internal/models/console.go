package models

import (
	"time"

	"gorm.io/gorm"
)

// Console 集运批次表（承运商级别的托运单分组）
// 状态由其下托运单状态集合按优先级推导，每次变化单独记审计。
type Console struct {
	ID          uint           `gorm:"primarykey" json:"id"`                      // 主键
	ConsoleNo   string         `gorm:"uniqueIndex;not null" json:"console_no"`    // 批次编号
	CarrierCode string         `gorm:"index" json:"carrier_code"`                 // 承运商编码
	Status      string         `gorm:"index;not null" json:"status"`              // 批次状态（推导值）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间

	Consignments []Consignment `gorm:"foreignKey:ConsoleID" json:"consignments,omitempty"` // 托运单
}

// TableName 指定表名
func (Console) TableName() string {
	return "consoles"
}
