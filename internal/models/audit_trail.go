package models

import "time"

// AuditTrail 审计轨迹表（仅追加）
// 每次受跟踪实体的变更落一行，实体首条记录为合成的 created 条目。
type AuditTrail struct {
	ID         uint      `gorm:"primarykey" json:"id"`                               // 主键
	EntityKind string    `gorm:"type:varchar(50);index:idx_audit_entity;not null" json:"entity_kind"` // 实体类型
	EntityID   uint      `gorm:"index:idx_audit_entity;not null" json:"entity_id"`   // 实体ID
	Action     string    `gorm:"type:varchar(20);index;not null" json:"action"`      // 动作（created/updated）
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`                     // 操作人ID
	ActorName  string    `gorm:"type:varchar(100);not null;default:''" json:"actor_name"` // 操作人名称
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"` // 请求ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                            // 创建时间

	Fields []AuditTrailField `gorm:"foreignKey:TrailID" json:"fields,omitempty"` // 字段变更明细
}

// TableName 指定表名
func (AuditTrail) TableName() string {
	return "audit_trails"
}

// AuditTrailField 审计字段变更表
type AuditTrailField struct {
	ID          uint   `gorm:"primarykey" json:"id"`                              // 主键
	TrailID     uint   `gorm:"index;not null" json:"trail_id"`                    // 审计轨迹ID
	FieldName   string `gorm:"type:varchar(100);not null" json:"field_name"`      // 字段名
	OldValue    string `gorm:"type:varchar(500)" json:"old_value"`                // 旧值
	NewValue    string `gorm:"type:varchar(500)" json:"new_value"`                // 新值
	Title       string `gorm:"type:varchar(200)" json:"title"`                    // 可读标题
	Description string `gorm:"type:varchar(500)" json:"description"`              // 可读描述
}

// TableName 指定表名
func (AuditTrailField) TableName() string {
	return "audit_trail_fields"
}
