package service

import (
	"strings"
	"testing"

	"github.com/freightdesk-next/internal/constants"
)

func TestNextDraftPackageNo(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		offset   int
		want     string
	}{
		{name: "empty starts at one", existing: nil, offset: 0, want: "DRAFT1"},
		{name: "continues from max", existing: []string{"DRAFT1", "DRAFT3"}, offset: 0, want: "DRAFT4"},
		{name: "offset for batch creation", existing: []string{"DRAFT2"}, offset: 2, want: "DRAFT5"},
		{name: "permanent nos ignored", existing: []string{"AR300007", "DRAFT1"}, offset: 0, want: "DRAFT2"},
		{name: "garbage ignored", existing: []string{"DRAFTx", ""}, offset: 0, want: "DRAFT1"},
	}
	for _, c := range cases {
		if got := nextDraftPackageNo(c.existing, c.offset); got != c.want {
			t.Fatalf("%s: nextDraftPackageNo = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestNextPackagePermanentNos(t *testing.T) {
	env := setupServiceTest(t, "sequence_permanent")

	first, err := env.sequence.NextPackagePermanentNos(3)
	if err != nil {
		t.Fatalf("next permanent nos failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 nos, got %d", len(first))
	}
	if first[0] != "AR300001" || first[1] != "AR300002" || first[2] != "AR300003" {
		t.Fatalf("unexpected nos: %v", first)
	}

	// 序号全局单调，跨批次不重复
	second, err := env.sequence.NextPackagePermanentNos(2)
	if err != nil {
		t.Fatalf("next permanent nos failed: %v", err)
	}
	if second[0] != "AR300004" || second[1] != "AR300005" {
		t.Fatalf("unexpected nos: %v", second)
	}

	empty, err := env.sequence.NextPackagePermanentNos(0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result for n=0, got %v %v", empty, err)
	}
}

func TestNextConsignmentNos(t *testing.T) {
	env := setupServiceTest(t, "sequence_consignment")

	draft, err := env.sequence.NextConsignmentDraftNo()
	if err != nil {
		t.Fatalf("next draft no failed: %v", err)
	}
	if draft != constants.ConsignmentDraftPrefix+"000001" {
		t.Fatalf("unexpected draft no: %s", draft)
	}

	permanent, err := env.sequence.NextConsignmentPermanentNo()
	if err != nil {
		t.Fatalf("next permanent no failed: %v", err)
	}
	if !strings.HasPrefix(permanent, constants.ConsignmentPermanentPrefix) || len(permanent) != len(constants.ConsignmentPermanentPrefix)+6 {
		t.Fatalf("unexpected permanent no: %s", permanent)
	}

	// 草稿序列与正式序列相互独立
	next, err := env.sequence.NextConsignmentDraftNo()
	if err != nil {
		t.Fatalf("next draft no failed: %v", err)
	}
	if next != constants.ConsignmentDraftPrefix+"000002" {
		t.Fatalf("unexpected draft no: %s", next)
	}
}
