package model

import "time"

// Audit categories.
const (
	AuditCategoryBackup    = "backup"
	AuditCategoryCopy      = "copy"
	AuditCategorySchedule  = "schedule"
	AuditCategoryContainer = "container"
	AuditCategoryGit       = "git"
	AuditCategoryAuth      = "auth"
	AuditCategorySystem    = "system"
)

// Audit triggers.
const (
	AuditTriggerManual    = "manual"
	AuditTriggerScheduled = "scheduled"
)

// Audit statuses.
const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

// AuditEntry is one append-only operational event. Entries are never
// mutated or deleted by normal operation.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Category    string    `json:"category"`
	Trigger     string    `json:"trigger"`
	Status      string    `json:"status"`
	BackupID    string    `json:"backup_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}
