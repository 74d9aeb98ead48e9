package service

import (
	"context"
	"image/color"
	"sync"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/shortener"
)

type mockShortlinkStorage struct {
	findByCodeFunc      func(ctx context.Context, code string) (model.Shortlink, error)
	insertFunc          func(ctx context.Context, link model.Shortlink) error
	incrementClicksFunc func(ctx context.Context, code string, delta int64) error
	deleteByIDFunc      func(ctx context.Context, id string) (bool, error)
	listFunc            func(ctx context.Context, limit int) ([]model.Shortlink, error)
}

func (m *mockShortlinkStorage) FindByCode(ctx context.Context, code string) (model.Shortlink, error) {
	return m.findByCodeFunc(ctx, code)
}

func (m *mockShortlinkStorage) Insert(ctx context.Context, link model.Shortlink) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, link)
	}
	return nil
}

func (m *mockShortlinkStorage) IncrementClicks(ctx context.Context, code string, delta int64) error {
	if m.incrementClicksFunc != nil {
		return m.incrementClicksFunc(ctx, code, delta)
	}
	return nil
}

func (m *mockShortlinkStorage) DeleteByID(ctx context.Context, id string) (bool, error) {
	return m.deleteByIDFunc(ctx, id)
}

func (m *mockShortlinkStorage) List(ctx context.Context, limit int) ([]model.Shortlink, error) {
	return m.listFunc(ctx, limit)
}

type mockStatusStorage struct {
	saveStatusFunc func(ctx context.Context, check model.StatusCheck) error
	listStatusFunc func(ctx context.Context, limit int) ([]model.StatusCheck, error)
}

func (m *mockStatusStorage) SaveStatus(ctx context.Context, check model.StatusCheck) error {
	if m.saveStatusFunc != nil {
		return m.saveStatusFunc(ctx, check)
	}
	return nil
}

func (m *mockStatusStorage) ListStatus(ctx context.Context, limit int) ([]model.StatusCheck, error) {
	return m.listStatusFunc(ctx, limit)
}

type mockShortener struct {
	mu    sync.Mutex
	calls []string
	fn    func(longURL string) shortener.Result
}

func (m *mockShortener) Shorten(_ context.Context, longURL string) shortener.Result {
	m.mu.Lock()
	m.calls = append(m.calls, longURL)
	m.mu.Unlock()
	return m.fn(longURL)
}

func (m *mockShortener) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockRenderer struct {
	renderFunc func(payload string, fg, bg color.Color, size int) ([]byte, error)
}

func (m *mockRenderer) RenderQR(payload string, fg, bg color.Color, size int) ([]byte, error) {
	return m.renderFunc(payload, fg, bg, size)
}

type mockWebPEncoder struct {
	encodeFunc func(data []byte, quality float32) ([]byte, error)
}

func (m *mockWebPEncoder) ReencodeToWebP(data []byte, quality float32) ([]byte, error) {
	return m.encodeFunc(data, quality)
}

type mockClickRecorder struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (m *mockClickRecorder) RecordClick(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	return m.err
}

// sequenceGenerator hands out codes in order and repeats the last one.
type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[min(g.next, len(g.codes)-1)]
	g.next++
	return code, nil
}
