// internal/streamplan/mock.go
package streamplan

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/llehouerou/lumen/internal/media"
)

// Call records one request made to the mock service.
type Call struct {
	Method  string // "GetStreamPlan" or "ChangeStream"
	ItemID  uuid.UUID
	Options Options
	Start   media.Ticks
}

// Mock is a test double for Service. It builds plans from the item's first
// matching media source the way a server would.
type Mock struct {
	mu sync.Mutex

	errs     []error // consumed one per call
	noURL    int     // number of upcoming plans returned without a URL
	delivery media.SubtitleDelivery
	gate     chan struct{}
	calls    []Call
}

// NewMock creates a mock service that answers every request.
func NewMock() *Mock {
	return &Mock{delivery: media.DeliveryExternal}
}

func (m *Mock) GetStreamPlan(ctx context.Context, item *media.Item, opts Options, start media.Ticks) (*Plan, error) {
	return m.answer(ctx, Call{Method: "GetStreamPlan", ItemID: item.ID, Options: opts, Start: start}, item)
}

func (m *Mock) ChangeStream(ctx context.Context, current *Plan, opts Options, start media.Ticks) (*Plan, error) {
	item := &media.Item{ID: current.ItemID, MediaSources: []media.MediaSource{current.MediaSource}}
	return m.answer(ctx, Call{Method: "ChangeStream", ItemID: current.ItemID, Options: opts, Start: start}, item)
}

func (m *Mock) answer(ctx context.Context, call Call, item *media.Item) (*Plan, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	gate := m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}

	src, ok := item.Source(call.Options.MediaSourceID)
	if !ok {
		return nil, ErrNoCompatibleStream
	}
	method, ok := ChoosePlayMethod(call.Options, src)
	if !ok {
		return nil, ErrNoCompatibleStream
	}

	plan := &Plan{
		ItemID:           call.ItemID,
		MediaSource:      src,
		PlayMethod:       method,
		Container:        src.Container,
		SubtitleDelivery: m.delivery,
		PlaySessionID:    uuid.NewString(),
		MediaURL:         fmt.Sprintf("mock://%s/%s?start=%d", call.ItemID, src.ID, call.Start),
	}
	if m.noURL > 0 {
		m.noURL--
		plan.MediaURL = ""
	}
	return plan, nil
}

// Test helpers

// QueueErrors makes the next calls fail in order. A nil entry succeeds.
func (m *Mock) QueueErrors(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
}

// SetMissingURL makes the next n plans come back without a media URL.
func (m *Mock) SetMissingURL(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noURL = n
}

// SetSubtitleDelivery sets the delivery method of returned plans.
func (m *Mock) SetSubtitleDelivery(d media.SubtitleDelivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivery = d
}

// Hold blocks every answer until the returned release function is called.
func (m *Mock) Hold() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.gate = nil
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns the requests received so far.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Verify Mock implements Service at compile time.
var _ Service = (*Mock)(nil)
