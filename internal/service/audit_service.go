package service

import (
	"fmt"
	"sort"

	"github.com/freightdesk-next/internal/logger"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"
)

// AuditService 审计轨迹记录服务
// 记录失败只写日志，永不向业务调用方返回错误。
type AuditService struct {
	auditRepo repository.AuditTrailRepository
}

// NewAuditService 创建审计轨迹记录服务
func NewAuditService(auditRepo repository.AuditTrailRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record 记录一次实体变更
// 首次记录写入 created 条目（不带字段差异），之后的记录按快照差异
// 逐字段写入；before 为 nil 视为创建。
func (s *AuditService) Record(entityKind string, entityID uint, before, after map[string]string, actor Actor) {
	count, err := s.auditRepo.CountByEntity(entityKind, entityID)
	if err != nil {
		logger.Errorw("audit count failed", "entity_kind", entityKind, "entity_id", entityID, "err", err)
		return
	}

	trail := &models.AuditTrail{
		EntityKind: entityKind,
		EntityID:   entityID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		RequestID:  actor.RequestID,
	}

	var fields []models.AuditTrailField
	if count == 0 || before == nil {
		trail.Action = "created"
	} else {
		trail.Action = "updated"
		fields = diffSnapshots(before, after)
		if len(fields) == 0 {
			return
		}
	}

	if err := s.auditRepo.Create(trail, fields); err != nil {
		logger.Errorw("audit record failed",
			"entity_kind", entityKind, "entity_id", entityID,
			"action", trail.Action, "actor_id", actor.ID, "err", err)
	}
}

// ListByEntity 按实体查询审计轨迹
func (s *AuditService) ListByEntity(entityKind string, entityID uint) ([]models.AuditTrail, error) {
	return s.auditRepo.ListByEntity(entityKind, entityID)
}

// List 按条件分页查询审计轨迹
func (s *AuditService) List(filter repository.AuditTrailListFilter) ([]models.AuditTrail, int64, error) {
	return s.auditRepo.List(filter)
}

// diffSnapshots 比较前后快照，按字段名排序产出差异行
func diffSnapshots(before, after map[string]string) []models.AuditTrailField {
	names := make([]string, 0, len(after))
	for name := range after {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []models.AuditTrailField
	for _, name := range names {
		oldValue := before[name]
		newValue := after[name]
		if oldValue == newValue {
			continue
		}
		title := auditFieldTitle(name)
		fields = append(fields, models.AuditTrailField{
			FieldName:   name,
			OldValue:    oldValue,
			NewValue:    newValue,
			Title:       title,
			Description: fmt.Sprintf("%s 由 %q 变更为 %q", title, oldValue, newValue),
		})
	}
	return fields
}
