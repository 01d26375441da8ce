package service

import (
	"errors"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"
)

// ErrConsoleNoRequired 批次编号不能为空
var ErrConsoleNoRequired = errors.New("批次编号不能为空")

// ConsoleService 集运批次服务
// 批次状态由其下托运单状态推导，这里只负责批次本身的增查。
type ConsoleService struct {
	consoleRepo  repository.ConsoleRepository
	auditService *AuditService
}

// NewConsoleService 创建集运批次服务
func NewConsoleService(consoleRepo repository.ConsoleRepository, auditService *AuditService) *ConsoleService {
	return &ConsoleService{
		consoleRepo:  consoleRepo,
		auditService: auditService,
	}
}

// Create 创建集运批次
func (s *ConsoleService) Create(consoleNo, carrierCode string, actor Actor) (*models.Console, error) {
	if consoleNo == "" {
		return nil, ErrConsoleNoRequired
	}
	console := &models.Console{
		ConsoleNo:   consoleNo,
		CarrierCode: carrierCode,
		Status:      constants.ConsoleStatusOpen,
	}
	if err := s.consoleRepo.Create(console); err != nil {
		return nil, err
	}
	s.auditService.Record(constants.AuditEntityConsole, console.ID, nil, SnapshotConsole(console), actor)
	return console, nil
}

// Get 获取集运批次详情
func (s *ConsoleService) Get(id uint) (*models.Console, error) {
	console, err := s.consoleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if console == nil {
		return nil, ErrConsoleNotFound
	}
	return console, nil
}

// List 分页查询集运批次
func (s *ConsoleService) List(page, pageSize int) ([]models.Console, int64, error) {
	return s.consoleRepo.List(page, pageSize)
}
