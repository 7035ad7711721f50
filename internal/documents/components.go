package documents

import (
	"errors"
	"fmt"

	"github.com/roach88/stratasim/internal/ecs"
)

// Component kinds owned by the document pipeline.
const (
	KindRawContent       ecs.Kind = "documents.raw_content"
	KindMetadata         ecs.Kind = "documents.metadata"
	KindProcessingStatus ecs.Kind = "documents.status"
	KindAnalysisResult   ecs.Kind = "documents.analysis"
)

// DefaultFileType is the declared type of a document seeded without one.
const DefaultFileType = "pdf"

// RawContent is the unprocessed text payload of a document.
type RawContent struct {
	Text string
}

func (RawContent) Kind() ecs.Kind { return KindRawContent }

// DocumentMetadata identifies a document.
type DocumentMetadata struct {
	ID       string
	Filename string
	FileType string
}

func (DocumentMetadata) Kind() ecs.Kind { return KindMetadata }

// ProcessingStatus is the lifecycle position of a document.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "Pending"
	StatusAnalyzing ProcessingStatus = "Analyzing"
	StatusCompleted ProcessingStatus = "Completed"
	StatusFailed    ProcessingStatus = "Failed"
)

func (ProcessingStatus) Kind() ecs.Kind { return KindProcessingStatus }

// ErrInvalidTransition is returned when a status change would move backwards
// or skip a required step.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the allowed next states for each status.
var transitions = map[ProcessingStatus][]ProcessingStatus{
	StatusPending:   {StatusAnalyzing, StatusFailed},
	StatusAnalyzing: {StatusCompleted, StatusFailed},
}

// Terminal reports whether no further transition is possible.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Advance returns next if moving from s to next is allowed.
func (s ProcessingStatus) Advance(next ProcessingStatus) (ProcessingStatus, error) {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}

// Valid reports whether s is one of the four known statuses.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAnalyzing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// AnalysisResult is attached once analysis of a document completes.
type AnalysisResult struct {
	WordCount      int
	KeyEntities    []string
	SentimentScore float64
	Summary        string
}

func (AnalysisResult) Kind() ecs.Kind { return KindAnalysisResult }

// register adds every document kind to w.
func register(w *ecs.World) {
	ecs.Register[RawContent](w)
	ecs.Register[DocumentMetadata](w)
	ecs.Register[ProcessingStatus](w)
	ecs.Register[AnalysisResult](w)
}
