package pipeline_test

import (
	"context"
	"errors"
	"sync"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/classify"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

type stubClassifier struct {
	result classify.Result
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _, _ string) classify.Result {
	s.calls++
	return s.result
}

type memStore struct {
	mu        sync.Mutex
	reports   []domain.Report
	existsErr error
	insertErr error
}

func (m *memStore) ReportExists(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, r := range m.reports {
		if r.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) InsertReport(_ context.Context, r domain.Report) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	r.ID = int64(len(m.reports) + 1)
	m.reports = append(m.reports, r)
	return r.ID, nil
}

type hierarchyLookup map[string]domain.LocationHierarchy

func (h hierarchyLookup) LookupLocation(_ context.Context, name string) (domain.LocationHierarchy, bool, error) {
	loc, ok := h[name]
	return loc, ok, nil
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
	calls  int
}

func (s *stubGeocoder) ForwardGeocode(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	s.calls++
	return s.result, s.err
}

type recordingPublisher struct {
	published []domain.Report
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, r domain.Report) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

type stubFetcher struct {
	docs map[string][]domain.RawDocument
	errs map[string]error
	seen []string
}

func (f *stubFetcher) Fetch(_ context.Context, contentType string, _ int) ([]domain.RawDocument, error) {
	f.seen = append(f.seen, contentType)
	if err := f.errs[contentType]; err != nil {
		return nil, err
	}
	return f.docs[contentType], nil
}

var errBoom = errors.New("boom")
