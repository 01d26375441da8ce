package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/repository"

	"gorm.io/gorm"
)

// SequenceService 序号分配服务
// 显式的取号入口：实体构造前先取号，取号与保存解耦。
type SequenceService struct {
	seqRepo repository.SequenceRepository
}

// NewSequenceService 创建序号分配服务
func NewSequenceService(seqRepo repository.SequenceRepository) *SequenceService {
	return &SequenceService{seqRepo: seqRepo}
}

// WithTx 绑定事务
// 事务内取号必须走这里：取号与调用方写入共用同一连接，
// sqlite 单写连接下另开事务取号会自我死锁。
func (s *SequenceService) WithTx(tx *gorm.DB) *SequenceService {
	if tx == nil {
		return s
	}
	return &SequenceService{seqRepo: s.seqRepo.WithTx(tx)}
}

// NextPackagePermanentNos 连续分配 n 个包裹正式编号（全局单调递增）
func (s *SequenceService) NextPackagePermanentNos(n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	first, err := s.seqRepo.NextN(constants.SequencePackagingPermanent, "", n)
	if err != nil {
		return nil, err
	}
	nos := make([]string, 0, n)
	for i := 0; i < n; i++ {
		nos = append(nos, fmt.Sprintf(constants.PackagingPermanentFormat, first+uint64(i)))
	}
	return nos, nil
}

// NextConsignmentDraftNo 分配托运单临时编号
func (s *SequenceService) NextConsignmentDraftNo() (string, error) {
	n, err := s.seqRepo.Next(constants.SequenceConsignmentDraft, "")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", constants.ConsignmentDraftPrefix, n), nil
}

// NextConsignmentPermanentNo 分配托运单正式编号
func (s *SequenceService) NextConsignmentPermanentNo() (string, error) {
	n, err := s.seqRepo.Next(constants.SequenceConsignmentPermanent, "")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", constants.ConsignmentPermanentPrefix, n), nil
}

// nextDraftPackageNo 计算下一个草稿包裹编号
// 取当前最大草稿序号加一；编号删除后不复用，保证单调且对 UI 引用稳定。
func nextDraftPackageNo(existingNos []string, offset int) string {
	max := 0
	for _, no := range existingNos {
		rest, ok := strings.CutPrefix(no, constants.PackagingDraftPrefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", constants.PackagingDraftPrefix, max+1+offset)
}
