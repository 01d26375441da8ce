package service

import "errors"

// 校验类错误：可由调用方本地修正后重试
var (
	ErrCustomerRefRequired   = errors.New("客户参考号不能为空")
	ErrOrderLineInvalid      = errors.New("订单行无效")
	ErrQuantityInvalid       = errors.New("数量无效")
	ErrPackagingTypeRequired = errors.New("包装类型不能为空")
	ErrPackageCountInvalid   = errors.New("包裹数量无效")
	ErrRejectionCodeInvalid  = errors.New("拒收原因代码无效")
	ErrStepPayloadInvalid    = errors.New("步骤数据无效")
	ErrPickupAddressRequired = errors.New("提货地址与预约时间不能为空")
)

// 冲突类错误：返回时会带上具体冲突对象
var (
	ErrCustomerRefExists          = errors.New("客户参考号已存在")
	ErrLineLocked                 = errors.New("订单行已被其他在途托运单占用")
	ErrOrderLocked                = errors.New("采购订单已被其他在途托运单占用")
	ErrPackageMixedDangerousGoods = errors.New("包裹不允许混装危险品与普通货物")
	ErrPackageMixedFulfillment    = errors.New("包裹不允许混装不同履约类型的订单行")
	ErrPackageMixedDGClass        = errors.New("包裹不允许混装多个危险品类别")
	ErrPackageClosedLine          = errors.New("包裹已被已关闭订单行占用")
	ErrStatusTransitionInvalid    = errors.New("托运单状态不允许该流转")
	ErrConsignmentNotEditable     = errors.New("托运单当前状态不可编辑")
	ErrStepOrderViolation         = errors.New("步骤未按顺序推进")
	ErrStepIncomplete             = errors.New("前置步骤未完成")
	ErrTooManyOrders              = errors.New("超出单个托运单可选采购订单上限")
	ErrSupplierClientMismatch     = errors.New("所选采购订单的供应商或客户不一致")
	ErrDocumentsMissing           = errors.New("缺少商业发票或装箱单")
	ErrComplianceIncomplete       = errors.New("订单行合规信息不完整")
	ErrAllocationMissing          = errors.New("订单行尚未装箱")
	ErrConsoleNotAssigned         = errors.New("托运单尚未分配集运批次")
	ErrConsignmentNoPackages      = errors.New("托运单没有任何包裹")
)

// 完整性错误：分配超出订购数量等数据完整性问题，整批回滚
var (
	ErrReconcileNegative = errors.New("数量重算结果为负，分配超出订购数量")
	ErrQuantityImmutable = errors.New("订购数量不可低于已分配数量")
)

// 资源不存在
var (
	ErrOrderNotFound       = errors.New("采购订单不存在")
	ErrLineNotFound        = errors.New("采购订单行不存在")
	ErrConsignmentNotFound = errors.New("托运单不存在")
	ErrPackageNotFound     = errors.New("包裹不存在")
	ErrConsoleNotFound     = errors.New("集运批次不存在")
	ErrLineNotSelected     = errors.New("订单行不在托运单的选择范围内")
)
