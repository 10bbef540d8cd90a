package events

import (
	"encoding/json"
)

// EventData is implemented by typed event payloads.
type EventData interface {
	EventType() EventType
}

// ReportGeneratedData is the payload of ReportGenerated events.
type ReportGeneratedData struct {
	ContentHash string  `json:"contentHash"`
	Score       float64 `json:"score"`
	Grade       string  `json:"grade"`
}

func (d *ReportGeneratedData) EventType() EventType { return ReportGenerated }

// ReportPersistedData is the payload of ReportPersisted events.
type ReportPersistedData struct {
	ReportID  string  `json:"reportId"`
	DossierID string  `json:"dossierId"`
	Score     float64 `json:"score"`
	Verdict   string  `json:"verdict"`
}

func (d *ReportPersistedData) EventType() EventType { return ReportPersisted }

// ReevaluationCompletedData is the payload of ReevaluationCompleted events.
type ReevaluationCompletedData struct {
	Dossiers int `json:"dossiers"`
}

func (d *ReevaluationCompletedData) EventType() EventType { return ReevaluationCompleted }

// BackupCompletedData is the payload of BackupCompleted events.
type BackupCompletedData struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"sizeBytes"`
}

func (d *BackupCompletedData) EventType() EventType { return BackupCompleted }

// ErrorEventData is the payload of ErrorOccurred events.
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (d *ErrorEventData) EventType() EventType { return ErrorOccurred }

// TypedData decodes the event data map into its typed form, or nil when the
// type is unknown or the shape does not match.
func (e *Event) TypedData() EventData {
	if e.Data == nil {
		return nil
	}

	switch e.Type {
	case ReportGenerated:
		var data ReportGeneratedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ReportPersisted:
		var data ReportPersistedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ReevaluationCompleted:
		var data ReevaluationCompletedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case BackupCompleted:
		var data BackupCompletedData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	case ErrorOccurred:
		var data ErrorEventData
		if err := convertMapToStruct(e.Data, &data); err == nil {
			return &data
		}
	}
	return nil
}

func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	encoded, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, v)
}
