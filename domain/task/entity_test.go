package task

import (
	"errors"
	"testing"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"", "", false},
		{"Pending", StatusPending, false},
		{"In Progress", StatusInProgress, false},
		{"InProgress", StatusInProgress, false},
		{" Completed ", StatusCompleted, false},
		{"done", "", true},
		{"pending", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errs.ErrValidation) {
			t.Errorf("ParseStatus(%q) error = %v, want ErrValidation", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc, err := New("u1", "Buy milk", "", "", now)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if doc.Status != StatusPending {
		t.Errorf("Status = %q, want Pending", doc.Status)
	}
	if doc.Description != "" {
		t.Errorf("Description = %q, want empty", doc.Description)
	}
	if !doc.CreatedAt.Equal(now) || doc.OwnerID != "u1" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	now := time.Now()
	cases := map[string]func() error{
		"empty title": func() error { _, err := New("u1", "  ", "", "", now); return err },
		"no owner":    func() error { _, err := New("", "t", "", "", now); return err },
		"bad status":  func() error { _, err := New("u1", "t", "", Status("Later"), now); return err },
	}
	for name, fn := range cases {
		if err := fn(); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", name, err)
		}
	}
}

func TestPatchPreservesOwnership(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{Title: "a", Description: "b", Status: StatusPending, CreatedAt: created, OwnerID: "u1"}

	status := StatusCompleted
	intruder := "u2"
	out, err := Patch{Status: &status, OwnerID: &intruder}.Apply(doc)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.OwnerID != "u1" {
		t.Errorf("OwnerID = %q, want u1", out.OwnerID)
	}
	if out.Status != StatusCompleted || out.Title != "a" || !out.CreatedAt.Equal(created) {
		t.Errorf("unexpected merge result %+v", out)
	}
}

func TestPatchRejectsEmptyTitle(t *testing.T) {
	empty := ""
	_, err := Patch{Title: &empty}.Apply(Document{Title: "a", OwnerID: "u1"})
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("Apply() error = %v, want ErrValidation", err)
	}
}
