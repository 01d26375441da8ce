package service

import "github.com/freightdesk-next/internal/constants"

// allowedConsignmentTransitions 托运单状态流转表
// 不在表内的流转一律拒绝；终态没有出边。
var allowedConsignmentTransitions = map[string][]string{
	constants.ConsignmentStatusDraft: {
		constants.ConsignmentStatusPendingForApproval,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusPendingForApproval: {
		constants.ConsignmentStatusPendingConsoleAssignment,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusPendingConsoleAssignment: {
		constants.ConsignmentStatusFreightForwarderAssigned,
		constants.ConsignmentStatusPendingBid,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusPendingBid: {
		constants.ConsignmentStatusFreightForwarderAssigned,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusFreightForwarderAssigned: {
		constants.ConsignmentStatusPickupCompleted,
		constants.ConsignmentStatusPendingBid,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusPickupCompleted: {
		constants.ConsignmentStatusAtCustom,
		constants.ConsignmentStatusOutForDelivery,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusAtCustom: {
		constants.ConsignmentStatusCustomsCleared,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusCustomsCleared: {
		constants.ConsignmentStatusOutForDelivery,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	constants.ConsignmentStatusOutForDelivery: {
		constants.ConsignmentStatusDelivered,
		constants.ConsignmentStatusReceivedAtDestination,
		constants.ConsignmentStatusPartiallyReceived,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	},
	// 部分签收后只能走完签收，送达只从 out_for_delivery 进入
	constants.ConsignmentStatusPartiallyReceived: {
		constants.ConsignmentStatusReceivedAtDestination,
		constants.ConsignmentStatusCancelled,
	},
}

// transitionAllowed 判断单个托运单的流转是否在流转表内
func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedConsignmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// consignmentTerminal 判断托运单是否处于终态
func consignmentTerminal(status string) bool {
	switch status {
	case constants.ConsignmentStatusDelivered,
		constants.ConsignmentStatusReceivedAtDestination,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled:
		return true
	}
	return false
}

// validRejectionCodes 合法的拒收原因代码集合
var validRejectionCodes = map[string]bool{
	constants.RejectionCodeDamaged:      true,
	constants.RejectionCodeIncomplete:   true,
	constants.RejectionCodeWrongGoods:   true,
	constants.RejectionCodeDocuments:    true,
	constants.RejectionCodeQualityIssue: true,
	constants.RejectionCodeOther:        true,
}

// batchUniformPredecessors 批量流转时要求全部托运单处于的前驱状态集合
// 目标状态不在表内时仅按逐单流转表校验。
var batchUniformPredecessors = map[string][]string{
	constants.ConsignmentStatusAtCustom: {
		constants.ConsignmentStatusPickupCompleted,
	},
	constants.ConsignmentStatusCustomsCleared: {
		constants.ConsignmentStatusAtCustom,
	},
	constants.ConsignmentStatusOutForDelivery: {
		constants.ConsignmentStatusCustomsCleared,
		constants.ConsignmentStatusPickupCompleted,
	},
}

// batchPredecessorAllowed 判断批量流转的前驱状态是否满足一致性要求
func batchPredecessorAllowed(from, to string) bool {
	required, ok := batchUniformPredecessors[to]
	if !ok {
		return true
	}
	for _, status := range required {
		if status == from {
			return true
		}
	}
	return false
}

// calcConsoleStatus 根据批次下托运单状态推导批次状态
// 逐级判断：先看整体送达/签收，再看在途最靠前的环节。
// 批次下已无在册托运单（全部撤出或拒收/取消）视同提货失败。
func calcConsoleStatus(statuses []string, current string) string {
	if len(statuses) == 0 {
		return constants.ConsoleStatusPickupRejected
	}

	counts := make(map[string]int, len(statuses))
	for _, status := range statuses {
		counts[status]++
	}
	total := len(statuses)
	inactive := counts[constants.ConsignmentStatusRejected] + counts[constants.ConsignmentStatusCancelled]

	if counts[constants.ConsignmentStatusDelivered]+inactive == total && counts[constants.ConsignmentStatusDelivered] > 0 {
		return constants.ConsoleStatusDelivered
	}
	received := counts[constants.ConsignmentStatusReceivedAtDestination] + counts[constants.ConsignmentStatusDelivered]
	if received+inactive == total && received > 0 {
		return constants.ConsoleStatusReceived
	}
	if counts[constants.ConsignmentStatusDelivered] > 0 ||
		counts[constants.ConsignmentStatusReceivedAtDestination] > 0 ||
		counts[constants.ConsignmentStatusPartiallyReceived] > 0 {
		return constants.ConsoleStatusPartiallyReceived
	}
	if counts[constants.ConsignmentStatusAtCustom] > 0 {
		return constants.ConsoleStatusAtCustom
	}
	if counts[constants.ConsignmentStatusOutForDelivery] > 0 ||
		counts[constants.ConsignmentStatusCustomsCleared] > 0 {
		return constants.ConsoleStatusOutForDelivery
	}
	if counts[constants.ConsignmentStatusPickupCompleted] > 0 {
		return constants.ConsoleStatusPickupCompleted
	}
	if counts[constants.ConsignmentStatusFreightForwarderAssigned]+inactive == total {
		if counts[constants.ConsignmentStatusFreightForwarderAssigned] > 0 {
			return constants.ConsoleStatusFFAssigned
		}
		return constants.ConsoleStatusPickupRejected
	}
	return current
}
