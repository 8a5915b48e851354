// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/examdesk/exam-seat-allocation/internal/model"

// AllocationCompletedEvent is published after the seats of one slot
// commit.  It carries enough information for downstream consumers to
// log, notify invigilators, or trigger report generation without
// querying the primary database.
type AllocationCompletedEvent struct {
	ExamSlotID   uint64            `json:"exam_slot_id"`
	Date         string            `json:"date"`
	Session      string            `json:"session"`
	SubjectCode  string            `json:"subject_code"`
	SubjectTitle string            `json:"subject_title"`
	Policy       string            `json:"policy"`
	Students     int               `json:"students"`
	Halls        []model.HallUsage `json:"halls"`
	CompletedAt  string            `json:"completed_at"`
}
