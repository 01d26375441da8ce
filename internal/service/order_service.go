package service

import (
	"fmt"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"

	"gorm.io/gorm"
)

// OrderLineInput 采购订单行入参
type OrderLineInput struct {
	LineNo              int    `json:"line_no"`
	SKU                 string `json:"sku"`
	Description         string `json:"description"`
	Quantity            int    `json:"quantity"`
	FulfillmentType     string `json:"fulfillment_type"`
	DangerousGoods      bool   `json:"dangerous_goods"`
	DangerousGoodsClass string `json:"dangerous_goods_class"`
}

// OrderInput 采购订单入参
type OrderInput struct {
	OrderNo      string           `json:"order_no"`
	CustomerRef  string           `json:"customer_ref"`
	SupplierCode string           `json:"supplier_code"`
	ClientCode   string           `json:"client_code"`
	StorerKey    string           `json:"storer_key"`
	Remark       string           `json:"remark"`
	Lines        []OrderLineInput `json:"lines"`
}

// ImportRowResult 批量导入的单行结果
type ImportRowResult struct {
	Row         int    `json:"row"`
	CustomerRef string `json:"customer_ref"`
	OrderID     uint   `json:"order_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OrderService 采购订单服务
type OrderService struct {
	orderRepo    repository.PurchaseOrderRepository
	reconcile    *ReconcileService
	auditService *AuditService
}

// NewOrderService 创建采购订单服务
func NewOrderService(orderRepo repository.PurchaseOrderRepository, reconcile *ReconcileService, auditService *AuditService) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		reconcile:    reconcile,
		auditService: auditService,
	}
}

// CreatePurchaseOrder 创建采购订单
// 客户参考号全局唯一；订单行初始时全部数量进入未分配桶。
func (s *OrderService) CreatePurchaseOrder(input OrderInput, actor Actor) (*models.PurchaseOrder, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	var order *models.PurchaseOrder
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		existing, err := orderRepo.GetByCustomerRef(input.CustomerRef)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", ErrCustomerRefExists, input.CustomerRef)
		}

		openQuantity := 0
		lines := make([]models.PurchaseOrderLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			openQuantity += line.Quantity
			lines = append(lines, models.PurchaseOrderLine{
				LineNo:              line.LineNo,
				SKU:                 line.SKU,
				Description:         line.Description,
				Quantity:            line.Quantity,
				OpenQuantity:        line.Quantity,
				Status:              constants.OrderStatusOpen,
				FulfillmentType:     line.FulfillmentType,
				DangerousGoods:      line.DangerousGoods,
				DangerousGoodsClass: line.DangerousGoodsClass,
			})
		}

		order = &models.PurchaseOrder{
			OrderNo:      input.OrderNo,
			CustomerRef:  input.CustomerRef,
			SupplierCode: input.SupplierCode,
			ClientCode:   input.ClientCode,
			StorerKey:    input.StorerKey,
			Status:       constants.OrderStatusOpen,
			OpenQuantity: openQuantity,
			Remark:       input.Remark,
		}
		if err := orderRepo.Create(order, lines); err != nil {
			return err
		}
		order.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(constants.AuditEntityPurchaseOrder, order.ID, nil, SnapshotPurchaseOrder(order), actor)
	return order, nil
}

// ImportOrders 批量导入采购订单
// 逐行独立提交：单行失败不影响其余行，结果列表逐行给出成败。
func (s *OrderService) ImportOrders(inputs []OrderInput, actor Actor) []ImportRowResult {
	results := make([]ImportRowResult, 0, len(inputs))
	for i, input := range inputs {
		result := ImportRowResult{Row: i + 1, CustomerRef: input.CustomerRef}
		order, err := s.CreatePurchaseOrder(input, actor)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.OrderID = order.ID
		}
		results = append(results, result)
	}
	return results
}

// UpdateLineQuantity 修改订单行的订购数量
// 新数量不得低于已装箱与已履约之和；改动后立即重算数量桶。
func (s *OrderService) UpdateLineQuantity(lineID uint, quantity int, actor Actor) (*models.PurchaseOrderLine, error) {
	if quantity <= 0 {
		return nil, ErrQuantityInvalid
	}

	var result *models.PurchaseOrderLine
	var before, after map[string]string
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		lines, err := orderRepo.GetLinesByIDsForUpdate([]uint{lineID})
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrLineNotFound
		}
		line := lines[0]
		if line.Status == constants.OrderStatusCancelled {
			return fmt.Errorf("%w: 行 %d 状态 %s", ErrOrderLineInvalid, line.ID, line.Status)
		}
		if quantity < line.ProcessedQuantity+line.FulfilledQuantity {
			return fmt.Errorf("%w: 行 %d 已占用 %d",
				ErrQuantityImmutable, line.ID, line.ProcessedQuantity+line.FulfilledQuantity)
		}
		before = SnapshotPurchaseOrderLine(&line)

		if err := tx.Model(&models.PurchaseOrderLine{}).Where("id = ?", line.ID).
			Update("quantity", quantity).Error; err != nil {
			return err
		}

		recomputed, err := s.reconcile.recomputeTx(tx, []uint{lineID})
		if err != nil {
			return err
		}
		if len(recomputed) > 0 {
			result = &recomputed[0]
			after = SnapshotPurchaseOrderLine(result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(constants.AuditEntityPurchaseOrderLine, lineID, before, after, actor)
	return result, nil
}

// Get 获取采购订单详情
func (s *OrderService) Get(id uint) (*models.PurchaseOrder, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 分页查询采购订单
func (s *OrderService) List(filter repository.PurchaseOrderListFilter) ([]models.PurchaseOrder, int64, error) {
	return s.orderRepo.List(filter)
}

// validateOrderInput 校验采购订单入参
func validateOrderInput(input OrderInput) error {
	if input.CustomerRef == "" {
		return ErrCustomerRefRequired
	}
	if len(input.Lines) == 0 {
		return ErrOrderLineInvalid
	}
	for _, line := range input.Lines {
		if line.SKU == "" {
			return fmt.Errorf("%w: 行 %d 缺少物料编码", ErrOrderLineInvalid, line.LineNo)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: 行 %d 数量 %d", ErrQuantityInvalid, line.LineNo, line.Quantity)
		}
		if line.FulfillmentType != constants.FulfillmentTypeBTS && line.FulfillmentType != constants.FulfillmentTypeBTO {
			return fmt.Errorf("%w: 行 %d 履约类型 %s", ErrOrderLineInvalid, line.LineNo, line.FulfillmentType)
		}
	}
	return nil
}
