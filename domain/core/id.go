package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ParseID validates that s is a UUID and returns it as an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return ID(parsed.String()), nil
}

// ReportKind identifies which analysis produced a Report.
type ReportKind string

const (
	ReportGroupStats ReportKind = "group_stats"
	ReportLinearFit  ReportKind = "linear_fit"
	ReportPrediction ReportKind = "prediction"
	ReportComparison ReportKind = "comparison"
	ReportTable      ReportKind = "table_summary"
	ReportLesson     ReportKind = "lesson"
)

// Report is the envelope every analysis result is returned in.
type Report struct {
	ID        ID          `json:"id"`
	Kind      ReportKind  `json:"kind"`
	Payload   interface{} `json:"payload"`
	CreatedAt Timestamp   `json:"created_at"`
}

// NewReport wraps payload in a freshly identified Report.
func NewReport(kind ReportKind, payload interface{}) Report {
	return Report{
		ID:        NewID(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: Now(),
	}
}
