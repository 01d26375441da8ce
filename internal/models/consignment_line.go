package models

import "time"

// ConsignmentLine 托运单行表（托运单 × 采购订单行的关联，含合规信息）
// 进入装箱步骤之后、离开装箱步骤之前，每个关联行必须具备完整合规记录。
type ConsignmentLine struct {
	ID                     uint      `gorm:"primarykey" json:"id"`                                // 主键
	ConsignmentID          uint      `gorm:"index:idx_consignment_line,unique;not null" json:"consignment_id"`        // 托运单ID
	PurchaseOrderLineID    uint      `gorm:"index:idx_consignment_line,unique;index;not null" json:"purchase_order_line_id"` // 采购订单行ID
	HSCode                 string    `gorm:"type:varchar(20)" json:"hs_code"`                     // 海关编码
	ExportControlClass     string    `gorm:"type:varchar(20)" json:"export_control_class"`        // 出口管制分类
	DangerousGoodsClass    string    `gorm:"type:varchar(20)" json:"dangerous_goods_class"`       // 危险品类别
	DangerousGoodsCategory string    `gorm:"type:varchar(20)" json:"dangerous_goods_category"`    // 危险品细分类目
	CountryOfOrigin        string    `gorm:"type:varchar(10)" json:"country_of_origin"`           // 原产国
	CreatedAt              time.Time `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt              time.Time `gorm:"index" json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (ConsignmentLine) TableName() string {
	return "consignment_lines"
}

// ComplianceComplete 合规信息是否完整
func (l ConsignmentLine) ComplianceComplete() bool {
	return l.HSCode != "" && l.CountryOfOrigin != ""
}
