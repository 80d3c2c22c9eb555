package journal

import (
	"context"
	"strings"

	"github.com/starford/unpack/internal/pipeline"
	"github.com/starford/unpack/internal/sse"
)

type canceler interface {
	Cancel()
}

type cancelFunc context.CancelFunc

func (f cancelFunc) Cancel() { f() }

// tracked is the owner's running capture step.
type tracked struct {
	c canceler
}

// track registers c as the owner's running capture step, cancelling any
// step it replaces. The returned func unregisters it.
func (s *Service) track(ownerID string, c canceler) func() {
	t := &tracked{c: c}
	s.mu.Lock()
	prev := s.captures[ownerID]
	s.captures[ownerID] = t
	s.mu.Unlock()
	if prev != nil {
		prev.c.Cancel()
	}
	return func() {
		s.mu.Lock()
		if s.captures[ownerID] == t {
			delete(s.captures, ownerID)
		}
		s.mu.Unlock()
	}
}

// CancelCapture aborts the owner's running capture step. It reports whether
// one was running.
func (s *Service) CancelCapture(ownerID string) bool {
	s.mu.Lock()
	t := s.captures[ownerID]
	delete(s.captures, ownerID)
	s.mu.Unlock()
	if t == nil {
		return false
	}
	t.c.Cancel()
	return true
}

// Extract reads the owner's photos and reports the route to take.
func (s *Service) Extract(ctx context.Context, ownerID string, keys []string) (pipeline.Extraction, error) {
	pages, err := s.loadPages(ownerID, keys)
	if err != nil {
		return pipeline.Extraction{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.track(ownerID, cancelFunc(cancel))()
	return s.pipeline.Extract(ctx, pages)
}

// Analyze writes the overview and discovers tangents for text.
func (s *Service) Analyze(ctx context.Context, ownerID, text string) (pipeline.Analysis, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.track(ownerID, cancelFunc(cancel))()
	return s.pipeline.Analyze(ctx, text)
}

// Process runs the whole capture in one call. correctedText replaces the
// extracted text when the extraction needs manual review; without it such a
// capture fails with pipeline.ErrReviewRequired.
func (s *Service) Process(ctx context.Context, ownerID string, keys []string, correctedText string) (pipeline.Draft, error) {
	pages, err := s.loadPages(ownerID, keys)
	if err != nil {
		return pipeline.Draft{}, err
	}
	corrector := pipeline.CorrectorFunc(func(context.Context, pipeline.Extraction) (string, error) {
		if strings.TrimSpace(correctedText) == "" {
			return "", pipeline.ErrReviewRequired
		}
		return correctedText, nil
	})

	c := s.pipeline.Start(ctx, pages, corrector)
	defer s.track(ownerID, c)()
	d, err := c.Wait()
	if err != nil {
		return pipeline.Draft{}, err
	}
	d.OwnerID = ownerID
	return d, nil
}

// Finish saves a draft and returns the first tangent to open.
func (s *Service) Finish(ctx context.Context, ownerID string, d pipeline.Draft) (pipeline.Outcome, error) {
	return s.save(ctx, ownerID, d, s.pipeline.Finish)
}

// Exit saves a draft and sends the user home.
func (s *Service) Exit(ctx context.Context, ownerID string, d pipeline.Draft) (pipeline.Outcome, error) {
	return s.save(ctx, ownerID, d, s.pipeline.Exit)
}

func (s *Service) save(ctx context.Context, ownerID string, d pipeline.Draft,
	persist func(context.Context, pipeline.Draft) (pipeline.Outcome, error)) (pipeline.Outcome, error) {
	d.OwnerID = ownerID
	for _, k := range d.PhotoKeys {
		if err := s.ownsPhoto(ownerID, k); err != nil {
			return pipeline.Outcome{}, err
		}
	}
	out, err := persist(ctx, d)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	s.events.Publish(sse.Event{Type: sse.EntryCreated, OwnerID: ownerID, Data: map[string]any{
		"id":       out.Entry.ID,
		"tangents": len(out.Tangents),
	}})
	return out, nil
}
