package models

import "time"

// Sequence 序号计数器表
// 显式的序号分配：取号前对行加写锁自增，取代隐藏在保存逻辑里的全局计数器。
// ScopeKey 为空表示全局计数器；草稿包裹号以托运单ID为 scope。
type Sequence struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                          // 主键
	Name      string    `gorm:"index:idx_sequence_scope,unique;not null" json:"name"`          // 计数器名称
	ScopeKey  string    `gorm:"index:idx_sequence_scope,unique;not null;default:''" json:"scope_key"` // 作用域
	Value     uint64    `gorm:"not null;default:0" json:"value"`                               // 当前值（已分配的最大序号）
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (Sequence) TableName() string {
	return "sequences"
}
