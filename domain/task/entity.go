package task

import (
	"strings"
	"time"

	"github.com/Aswath1709/task-manager-app/domain/errs"
)

// Status represents the state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ParseStatus accepts the wire spelling of a status. An empty string parses
// to the zero Status so callers can tell "absent" from "invalid".
func ParseStatus(s string) (Status, error) {
	switch strings.TrimSpace(s) {
	case "":
		return "", nil
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusInProgress), "InProgress":
		return StatusInProgress, nil
	case string(StatusCompleted):
		return StatusCompleted, nil
	}
	return "", errs.Invalid("status", "must be one of Pending, In Progress, Completed")
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Document is the stored body of a task. It doubles as the search document,
// which carries every field except the storage id and revision.
type Document struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	OwnerID     string    `json:"ownerId"`
}

// Task is a document together with its storage identity.
type Task struct {
	ID       string `json:"id"`
	Revision string `json:"revision"`
	Document
}

// New builds the document for a fresh task, applying defaults.
func New(ownerID, title, description string, status Status, now time.Time) (Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Document{}, errs.Invalid("ownerId", "must not be empty")
	}
	if strings.TrimSpace(title) == "" {
		return Document{}, errs.Invalid("title", "must not be empty")
	}
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return Document{}, errs.Invalid("status", "unknown status "+string(status))
	}
	return Document{
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   now.UTC(),
		OwnerID:     ownerID,
	}, nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	// OwnerID is accepted on the wire but never applied.
	OwnerID *string `json:"ownerId,omitempty"`
	// IfRevision, when set, must equal the stored revision.
	IfRevision string `json:"ifRevision,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Apply merges the patch onto d. OwnerID and CreatedAt are always preserved.
func (p Patch) Apply(d Document) (Document, error) {
	out := d
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return Document{}, errs.Invalid("title", "must not be empty")
		}
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return Document{}, errs.Invalid("status", "unknown status "+string(*p.Status))
		}
		out.Status = *p.Status
	}
	out.OwnerID = d.OwnerID
	out.CreatedAt = d.CreatedAt
	return out, nil
}
