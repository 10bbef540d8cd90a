// Package events provides the in-process pub/sub bus of the decision engine.
package events

import (
	"time"
)

// EventType identifies a system event.
type EventType string

const (
	ReportGenerated       EventType = "REPORT_GENERATED"
	ReportPersisted       EventType = "REPORT_PERSISTED"
	ReevaluationCompleted EventType = "REEVALUATION_COMPLETED"
	DossierCreated        EventType = "DOSSIER_CREATED"
	DossierUpdated        EventType = "DOSSIER_UPDATED"
	DossierDeleted        EventType = "DOSSIER_DELETED"
	BackupCompleted       EventType = "BACKUP_COMPLETED"
	MaintenanceCompleted  EventType = "MAINTENANCE_COMPLETED"
	ErrorOccurred         EventType = "ERROR_OCCURRED"
)

// Event is one emitted system event.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
