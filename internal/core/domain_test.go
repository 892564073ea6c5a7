package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := Money(0).Validate(); err != nil {
		t.Fatalf("zero should be valid, got %v", err)
	}
	if err := Money(20000).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Money(-1).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMemberValidate(t *testing.T) {
	if err := (Member{Name: "Andi Pratama", NIM: "2023001", Phone: "0812"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Member{Name: "  "}).Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestDueValidate(t *testing.T) {
	deadline := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	good := Due{Title: "Kas Januari", Amount: 20000, Deadline: deadline, Category: "Wajib"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Due{
		{Title: "", Amount: 1, Deadline: deadline, Category: "Wajib"},
		{Title: "a", Amount: -1, Deadline: deadline, Category: "Wajib"},
		{Title: "a", Amount: 1, Category: "Wajib"}, // zero deadline
		{Title: "a", Amount: 1, Deadline: deadline, Category: ""},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	good := Expense{Title: "Beli spidol", Amount: 15000, Date: date, Category: "ATK"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Title: "", Amount: 1, Date: date, Category: "ATK"},
		{Title: "a", Amount: -5, Date: date, Category: "ATK"},
		{Title: "a", Amount: 1, Category: "ATK"}, // zero date
		{Title: "a", Amount: 1, Date: date, Category: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := Snapshot{
		Members: []Member{{ID: "m1", Name: "Andi"}},
		Dues:    []Due{{ID: "d1", Title: "Kas", Amount: 1000}},
	}
	c := s.Clone()
	c.Members[0].Name = "Budi"
	c.Dues = append(c.Dues, Due{ID: "d2"})
	if s.Members[0].Name != "Andi" {
		t.Fatalf("clone mutated original member")
	}
	if len(s.Dues) != 1 {
		t.Fatalf("clone mutated original dues")
	}
}
