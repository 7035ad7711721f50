// Package documents implements the document analysis pipeline.
//
// Documents are seeded Pending. Ingestion moves documents with content to
// Analyzing (and documents without content straight to Failed), then
// analysis attaches an AnalysisResult and marks them Completed. A document
// whose content cannot be analyzed ends Failed with no result; it never
// aborts the run.
package documents

import (
	"fmt"
	"slices"

	"github.com/roach88/stratasim/internal/ecs"
)

// System names, in execution order.
const (
	SystemIngestion = "documents.ingestion"
	SystemAnalysis  = "documents.analysis"
)

// Document is one document handed to Seed.
// A nil Content seeds the document without RawContent.
type Document struct {
	ID       string
	Filename string
	FileType string
	Content  *string
}

// Report is the read-back view of one document after a run.
// Result is nil unless the document completed.
type Report struct {
	ID       string
	Filename string
	FileType string
	Status   ProcessingStatus
	Result   *AnalysisResult
}

// Option configures the pipeline.
type Option func(*options)

type options struct {
	analyzer     Analyzer
	scheduleOpts []ecs.Option
}

// WithAnalyzer replaces the built-in keyword analyzer.
func WithAnalyzer(a Analyzer) Option {
	return func(o *options) {
		if a != nil {
			o.analyzer = a
		}
	}
}

// WithScheduleOptions passes options through to the underlying schedule.
func WithScheduleOptions(opts ...ecs.Option) Option {
	return func(o *options) {
		o.scheduleOpts = append(o.scheduleOpts, opts...)
	}
}

func buildOptions(opts []Option) options {
	o := options{analyzer: NewKeywordAnalyzer()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewWorld creates a world with every document kind registered.
func NewWorld() *ecs.World {
	w := ecs.NewWorld()
	register(w)
	return w
}

// Seed spawns one Pending entity per document, in order.
func Seed(w *ecs.World, docs []Document) ([]ecs.Entity, error) {
	entities := make([]ecs.Entity, 0, len(docs))
	for _, d := range docs {
		fileType := d.FileType
		if fileType == "" {
			fileType = DefaultFileType
		}
		components := []ecs.Component{
			DocumentMetadata{ID: d.ID, Filename: d.Filename, FileType: fileType},
			StatusPending,
		}
		if d.Content != nil {
			components = append(components, RawContent{Text: *d.Content})
		}
		e, err := w.Spawn(components...)
		if err != nil {
			return nil, fmt.Errorf("seed document %q: %w", d.ID, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// NewSchedule builds the ingestion then analysis schedule.
func NewSchedule(opts ...Option) (*ecs.Schedule, error) {
	o := buildOptions(opts)
	s := ecs.NewSchedule(o.scheduleOpts...)
	if err := s.Add(ecs.NewSystem(SystemIngestion, ingest)); err != nil {
		return nil, err
	}
	if err := s.Add(analysisSystem(o.analyzer), ecs.After(SystemIngestion)); err != nil {
		return nil, err
	}
	return s, nil
}

// ingest moves Pending documents to Analyzing, or to Failed when they have
// no content.
func ingest(w *ecs.World, cmd *ecs.Commands) error {
	var stepErr error
	advance := func(e ecs.Entity, st *ProcessingStatus, next ProcessingStatus) {
		if stepErr != nil || *st != StatusPending {
			return
		}
		moved, err := st.Advance(next)
		if err != nil {
			stepErr = fmt.Errorf("%s: %w", e, err)
			return
		}
		*st = moved
		cmd.Logger().Debug("document ingested", "entity", e, "status", moved)
	}

	err := ecs.Each(w, func(e ecs.Entity, st *ProcessingStatus) {
		advance(e, st, StatusAnalyzing)
	}, ecs.With(KindRawContent))
	if err != nil {
		return err
	}
	err = ecs.Each(w, func(e ecs.Entity, st *ProcessingStatus) {
		advance(e, st, StatusFailed)
	}, ecs.Without(KindRawContent))
	if err != nil {
		return err
	}
	return stepErr
}

func analysisSystem(a Analyzer) ecs.System {
	return ecs.NewSystem(SystemAnalysis, func(w *ecs.World, cmd *ecs.Commands) error {
		var stepErr error
		err := ecs.Each2(w, func(e ecs.Entity, st *ProcessingStatus, raw *RawContent) {
			if stepErr != nil || *st != StatusAnalyzing {
				return
			}
			next := StatusCompleted
			result, err := a.Analyze(raw.Text)
			if err != nil {
				cmd.Logger().Debug("document analysis failed", "entity", e, "error", err)
				next = StatusFailed
			}
			moved, err := st.Advance(next)
			if err != nil {
				stepErr = fmt.Errorf("%s: %w", e, err)
				return
			}
			*st = moved
			if moved == StatusCompleted {
				cmd.Insert(e, result)
			}
		})
		if err != nil {
			return err
		}
		return stepErr
	})
}

// Results reads back every document in seed order.
func Results(w *ecs.World) ([]Report, error) {
	rows, err := ecs.Collect2[DocumentMetadata, ProcessingStatus](w)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(rows))
	for _, r := range rows {
		rep := Report{
			ID:       r.First.ID,
			Filename: r.First.Filename,
			FileType: r.First.FileType,
			Status:   r.Second,
		}
		if res, ok := ecs.Get[AnalysisResult](w, r.Entity); ok {
			res.KeyEntities = slices.Clone(res.KeyEntities)
			rep.Result = &res
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Run builds a fresh world, seeds docs, runs the pipeline once and reads
// the documents back.
func Run(docs []Document, opts ...Option) ([]Report, error) {
	w := NewWorld()
	if _, err := Seed(w, docs); err != nil {
		return nil, err
	}
	s, err := NewSchedule(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Run(w); err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}
	return Results(w)
}
