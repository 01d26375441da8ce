package service

import (
	"testing"

	"github.com/freightdesk-next/internal/constants"
)

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.ConsignmentStatusDraft, constants.ConsignmentStatusPendingForApproval, true},
		{constants.ConsignmentStatusDraft, constants.ConsignmentStatusCancelled, true},
		{constants.ConsignmentStatusDraft, constants.ConsignmentStatusDelivered, false},
		{constants.ConsignmentStatusPendingForApproval, constants.ConsignmentStatusPendingConsoleAssignment, true},
		{constants.ConsignmentStatusPendingConsoleAssignment, constants.ConsignmentStatusPendingBid, true},
		{constants.ConsignmentStatusFreightForwarderAssigned, constants.ConsignmentStatusPendingBid, true},
		{constants.ConsignmentStatusFreightForwarderAssigned, constants.ConsignmentStatusAtCustom, false},
		{constants.ConsignmentStatusPickupCompleted, constants.ConsignmentStatusAtCustom, true},
		{constants.ConsignmentStatusPickupCompleted, constants.ConsignmentStatusOutForDelivery, true},
		{constants.ConsignmentStatusAtCustom, constants.ConsignmentStatusCustomsCleared, true},
		{constants.ConsignmentStatusAtCustom, constants.ConsignmentStatusOutForDelivery, false},
		{constants.ConsignmentStatusOutForDelivery, constants.ConsignmentStatusDelivered, true},
		{constants.ConsignmentStatusOutForDelivery, constants.ConsignmentStatusPartiallyReceived, true},
		{constants.ConsignmentStatusPartiallyReceived, constants.ConsignmentStatusReceivedAtDestination, true},
		// 送达只从 out_for_delivery 进入
		{constants.ConsignmentStatusPartiallyReceived, constants.ConsignmentStatusDelivered, false},
		// 终态没有出边
		{constants.ConsignmentStatusDelivered, constants.ConsignmentStatusOutForDelivery, false},
		{constants.ConsignmentStatusCancelled, constants.ConsignmentStatusDraft, false},
		{constants.ConsignmentStatusRejected, constants.ConsignmentStatusPendingForApproval, false},
	}
	for _, c := range cases {
		if got := transitionAllowed(c.from, c.to); got != c.want {
			t.Fatalf("transitionAllowed(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestConsignmentTerminal(t *testing.T) {
	terminals := []string{
		constants.ConsignmentStatusDelivered,
		constants.ConsignmentStatusReceivedAtDestination,
		constants.ConsignmentStatusRejected,
		constants.ConsignmentStatusCancelled,
	}
	for _, status := range terminals {
		if !consignmentTerminal(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	if consignmentTerminal(constants.ConsignmentStatusOutForDelivery) {
		t.Fatalf("out_for_delivery is not terminal")
	}
}

func TestBatchPredecessorAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.ConsignmentStatusPickupCompleted, constants.ConsignmentStatusAtCustom, true},
		{constants.ConsignmentStatusFreightForwarderAssigned, constants.ConsignmentStatusAtCustom, false},
		{constants.ConsignmentStatusAtCustom, constants.ConsignmentStatusCustomsCleared, true},
		{constants.ConsignmentStatusCustomsCleared, constants.ConsignmentStatusOutForDelivery, true},
		{constants.ConsignmentStatusPickupCompleted, constants.ConsignmentStatusOutForDelivery, true},
		{constants.ConsignmentStatusAtCustom, constants.ConsignmentStatusOutForDelivery, false},
		// 不在前驱表内的目标状态只按逐单流转表校验
		{constants.ConsignmentStatusDraft, constants.ConsignmentStatusCancelled, true},
	}
	for _, c := range cases {
		if got := batchPredecessorAllowed(c.from, c.to); got != c.want {
			t.Fatalf("batchPredecessorAllowed(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCalcConsoleStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		current  string
		want     string
	}{
		{
			name:    "vacated console falls to pickup rejected",
			current: constants.ConsoleStatusOpen,
			want:    constants.ConsoleStatusPickupRejected,
		},
		{
			name:     "all delivered",
			statuses: []string{constants.ConsignmentStatusDelivered, constants.ConsignmentStatusDelivered},
			current:  constants.ConsoleStatusOutForDelivery,
			want:     constants.ConsoleStatusDelivered,
		},
		{
			name:     "delivered plus cancelled counts as delivered",
			statuses: []string{constants.ConsignmentStatusDelivered, constants.ConsignmentStatusCancelled},
			current:  constants.ConsoleStatusOutForDelivery,
			want:     constants.ConsoleStatusDelivered,
		},
		{
			name:     "all received or delivered",
			statuses: []string{constants.ConsignmentStatusReceivedAtDestination, constants.ConsignmentStatusDelivered},
			current:  constants.ConsoleStatusOutForDelivery,
			want:     constants.ConsoleStatusReceived,
		},
		{
			name:     "some received",
			statuses: []string{constants.ConsignmentStatusPartiallyReceived, constants.ConsignmentStatusOutForDelivery},
			current:  constants.ConsoleStatusOutForDelivery,
			want:     constants.ConsoleStatusPartiallyReceived,
		},
		{
			name:     "any at custom",
			statuses: []string{constants.ConsignmentStatusAtCustom, constants.ConsignmentStatusOutForDelivery},
			current:  constants.ConsoleStatusPickupCompleted,
			want:     constants.ConsoleStatusAtCustom,
		},
		{
			name:     "out for delivery",
			statuses: []string{constants.ConsignmentStatusOutForDelivery, constants.ConsignmentStatusCustomsCleared},
			current:  constants.ConsoleStatusAtCustom,
			want:     constants.ConsoleStatusOutForDelivery,
		},
		{
			name:     "pickup completed",
			statuses: []string{constants.ConsignmentStatusPickupCompleted, constants.ConsignmentStatusFreightForwarderAssigned},
			current:  constants.ConsoleStatusFFAssigned,
			want:     constants.ConsoleStatusPickupCompleted,
		},
		{
			name:     "all assigned",
			statuses: []string{constants.ConsignmentStatusFreightForwarderAssigned, constants.ConsignmentStatusFreightForwarderAssigned},
			current:  constants.ConsoleStatusOpen,
			want:     constants.ConsoleStatusFFAssigned,
		},
		{
			name:     "all rejected or cancelled",
			statuses: []string{constants.ConsignmentStatusRejected, constants.ConsignmentStatusCancelled},
			current:  constants.ConsoleStatusFFAssigned,
			want:     constants.ConsoleStatusPickupRejected,
		},
		{
			name:     "mixed early stages keep current",
			statuses: []string{constants.ConsignmentStatusFreightForwarderAssigned, constants.ConsignmentStatusPendingBid},
			current:  constants.ConsoleStatusOpen,
			want:     constants.ConsoleStatusOpen,
		},
	}
	for _, c := range cases {
		if got := calcConsoleStatus(c.statuses, c.current); got != c.want {
			t.Fatalf("%s: calcConsoleStatus = %s, want %s", c.name, got, c.want)
		}
	}
}
