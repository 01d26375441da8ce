package constants

// 采购订单/订单行状态常量
const (
	OrderStatusOpen               = "open"
	OrderStatusPartiallyFulfilled = "partially_fulfilled"
	OrderStatusClosed             = "closed"
	OrderStatusCancelled          = "cancelled"
)

// 订单履约类型常量（BTS 备货 / BTO 订货）
const (
	FulfillmentTypeBTS = "bts"
	FulfillmentTypeBTO = "bto"
)

// 包裹状态常量
const (
	PackagingStatusDraft       = "draft"
	PackagingStatusNotReceived = "not_received"
	PackagingStatusReceived    = "received"
	PackagingStatusDelivered   = "delivered"
	PackagingStatusCancelled   = "cancelled"
)

// 托运单状态常量
const (
	ConsignmentStatusDraft                    = "draft"
	ConsignmentStatusPendingForApproval       = "pending_for_approval"
	ConsignmentStatusPendingConsoleAssignment = "pending_console_assignment"
	ConsignmentStatusPendingBid               = "pending_bid"
	ConsignmentStatusFreightForwarderAssigned = "freight_forwarder_assigned"
	ConsignmentStatusPickupCompleted          = "pickup_completed"
	ConsignmentStatusAtCustom                 = "at_custom"
	ConsignmentStatusCustomsCleared           = "customs_cleared"
	ConsignmentStatusOutForDelivery           = "out_for_delivery"
	ConsignmentStatusPartiallyReceived        = "partially_received"
	ConsignmentStatusDelivered                = "delivered"
	ConsignmentStatusReceivedAtDestination    = "received_at_destination"
	ConsignmentStatusRejected                 = "rejected"
	ConsignmentStatusCancelled                = "cancelled"
)

// 集运批次状态常量
const (
	ConsoleStatusOpen              = "open"
	ConsoleStatusFFAssigned        = "freight_forwarder_assigned"
	ConsoleStatusPickupCompleted   = "pickup_completed"
	ConsoleStatusAtCustom          = "at_custom"
	ConsoleStatusOutForDelivery    = "out_for_delivery"
	ConsoleStatusPartiallyReceived = "partially_received"
	ConsoleStatusReceived          = "received_at_destination"
	ConsoleStatusDelivered         = "delivered"
	ConsoleStatusPickupRejected    = "pickup_rejected"
)

// 托运单创建步骤常量
const (
	ConsignmentStepSelectOrders = 1
	ConsignmentStepSelectLines  = 2
	ConsignmentStepPacking      = 3
	ConsignmentStepAddress      = 4
	ConsignmentStepReview       = 5
)

// ConsignmentMaxOrders 单个托运单可选采购订单上限
const ConsignmentMaxOrders = 10

// 拒收原因代码常量
const (
	RejectionCodeDamaged      = "damaged"
	RejectionCodeIncomplete   = "incomplete"
	RejectionCodeWrongGoods   = "wrong_goods"
	RejectionCodeDocuments    = "documents_missing"
	RejectionCodeQualityIssue = "quality_issue"
	RejectionCodeOther        = "other"
)

// 包裹编号常量：草稿号前缀与正式号格式
const (
	PackagingDraftPrefix     = "DRAFT"
	PackagingPermanentFormat = "AR3%05d"
)

// 托运单编号前缀常量
const (
	ConsignmentDraftPrefix     = "TMP"
	ConsignmentPermanentPrefix = "CSG"
)

// 序号计数器名称常量
const (
	SequencePackagingPermanent   = "packaging_permanent"
	SequenceConsignmentDraft     = "consignment_draft"
	SequenceConsignmentPermanent = "consignment_permanent"
)

// 审计实体类型常量
const (
	AuditEntityPurchaseOrder     = "purchase_order"
	AuditEntityPurchaseOrderLine = "purchase_order_line"
	AuditEntityConsignment       = "consignment"
	AuditEntityPackaging         = "consignment_packaging"
	AuditEntityConsole           = "console"
)

// 数据范围过滤类型常量
const (
	ScopeKindNone     = "none"
	ScopeKindStorer   = "storer"
	ScopeKindSupplier = "supplier"
	ScopeKindClient   = "client"
)

// 队列常量
const (
	QueueDefault            = "default"
	TaskStatusEventDispatch = "status_event:dispatch"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "fd"
)
