package core

import (
	"errors"
	"testing"
	"time"
)

func TestPartitionValidate(t *testing.T) {
	cases := []struct {
		p   Partition
		err error
	}{
		{NewPartition(Projects, ""), nil},
		{NewPartition(Money, NoSubcat), nil},
		{NewPartition(Plans, "week"), nil},
		{NewPartition(Plans, "year"), nil},
		{NewPartition(Plans, NoSubcat), ErrInvalidSubcat},
		{NewPartition(Today, "week"), ErrInvalidSubcat},
		{NewPartition("shopping", NoSubcat), ErrInvalidCategory},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if !errors.Is(err, tc.err) {
			t.Fatalf("case %d (%s) expected %v, got %v", i, tc.p, tc.err, err)
		}
		if err != nil && !IsValidation(err) {
			t.Fatalf("case %d expected a validation error", i)
		}
	}
}

func TestStatusToggle(t *testing.T) {
	if Active.Toggle() != Completed || Completed.Toggle() != Active {
		t.Fatalf("toggle must flip between active and completed")
	}
}

func TestParticipants(t *testing.T) {
	p := Participants{A: "artem", B: "nikita"}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !p.ValidOwner(Common) || !p.ValidOwner("artem") || p.ValidOwner("bob") {
		t.Fatalf("unexpected owner validation")
	}
	if p.Has(Common) {
		t.Fatalf("common is not a participant")
	}

	bads := []Participants{{A: "", B: "x"}, {A: "x", B: "x"}, {A: Common, B: "x"}}
	for i, b := range bads {
		if err := b.Validate(); !errors.Is(err, ErrInvalidOwner) {
			t.Fatalf("case %d expected ErrInvalidOwner, got %v", i, err)
		}
	}
}

func TestFormatCreatedAt(t *testing.T) {
	ts := time.Date(2025, time.March, 5, 9, 7, 0, 0, time.UTC)
	if got := FormatCreatedAt(ts); got != "05.03 09:07" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}
