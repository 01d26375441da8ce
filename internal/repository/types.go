package repository

import "time"

// PurchaseOrderListFilter 查询采购订单列表的过滤条件
type PurchaseOrderListFilter struct {
	Page         int
	PageSize     int
	OrderNo      string
	CustomerRef  string
	SupplierCode string
	ClientCode   string
	StorerKey    string
	Status       string
	Scope        Scope
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// ConsignmentListFilter 查询托运单列表的过滤条件
type ConsignmentListFilter struct {
	Page          int
	PageSize      int
	ConsignmentNo string
	Status        string
	OwnerID       uint
	ConsoleID     uint
	Scope         Scope
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// AuditTrailListFilter 查询审计轨迹列表的过滤条件
type AuditTrailListFilter struct {
	Page        int
	PageSize    int
	EntityKind  string
	EntityID    uint
	ActorID     uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
