package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/tenant"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/notify"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/reconcile"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

type fakeStore struct {
	mu       sync.Mutex
	err      error
	payloads []order.Payload
	reply    func(order.Payload) order.Order
}

func (s *fakeStore) Update(_ context.Context, id string, p order.Payload) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
	if s.err != nil {
		return order.Order{}, s.err
	}
	if s.reply != nil {
		return s.reply(p), nil
	}
	return order.Order{ID: id, Status: p.Status}, nil
}

type fakeMarkers struct {
	flagged      []string
	acknowledged []string
}

func (m *fakeMarkers) Acknowledge(_ context.Context, id string) { m.acknowledged = append(m.acknowledged, id) }
func (m *fakeMarkers) Flag(_ context.Context, id string) { m.flagged = append(m.flagged, id) }

func sampleOrder() order.Order {
	items := []order.LineItem{{Name: "Leite", Quantity: 2, UnitPrice: 5}}
	return order.Order{
		ID:           "100",
		CustomerName: "Maria",
		Phone:        "85999990000",
		Items:        items,
		Total:        10,
		Status:       order.StatusPending,
		Altered:      true,
	}
}

func TestTransitionSuccess(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	markers := &fakeMarkers{}
	var hooked []order.Status
	hook := HookFunc(func(_ context.Context, o order.Order, from, to order.Status) error {
		hooked = append(hooked, from, to)
		return nil
	})
	m := NewMachine("1", store, markers, logger.NewNop(), hook)

	o := sampleOrder()
	if err := m.Transition(context.Background(), &o, order.StatusPicked); err != nil {
		t.Fatalf("transition: %v", err)
	}

	if o.Status != order.StatusPicked || o.Altered {
		t.Fatalf("expected picked and not altered, got %s altered=%v", o.Status, o.Altered)
	}
	if len(markers.acknowledged) != 1 || markers.acknowledged[0] != "100" {
		t.Fatalf("expected marker acknowledged, got %v", markers.acknowledged)
	}
	if len(hooked) != 2 || hooked[0] != order.StatusPending || hooked[1] != order.StatusPicked {
		t.Fatalf("expected hook pending->picked, got %v", hooked)
	}

	p := store.payloads[0]
	if p.Status != order.StatusPicked || p.Total != 10 || p.ClientName != "Maria" || len(p.Items) != 1 || p.TenantID != "1" {
		t.Fatalf("expected full payload, got %+v", p)
	}
}

func TestTransitionRejectsIllegalSteps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from order.Status
		to   order.Status
	}{
		{order.StatusDelivered, order.StatusPicked},
		{order.StatusPicked, order.StatusPending},
		{order.StatusInvoiced, order.StatusPending},
		{order.StatusPending, order.StatusPending},
	}
	for _, tc := range cases {
		store := &fakeStore{}
		markers := &fakeMarkers{}
		m := NewMachine("1", store, markers, logger.NewNop())

		o := sampleOrder()
		o.Status = tc.from
		err := m.Transition(context.Background(), &o, tc.to)
		if !errors.Is(err, order.ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
		if o.Status != tc.from || !o.Altered || len(store.payloads) != 0 || len(markers.acknowledged) != 0 {
			t.Fatalf("%s -> %s: expected no side effects", tc.from, tc.to)
		}
	}
}

type countingGateway struct {
	sent int
}

func (g *countingGateway) Send(context.Context, string, string, string) error {
	g.sent++
	return nil
}

type oneTenant struct{}

func (oneTenant) Get(context.Context, string) (tenant.Tenant, error) {
	return tenant.Tenant{ID: "1", NotificationToken: "tok"}, nil
}

func TestTransitionSkipsForwardToInvoicing(t *testing.T) {
	t.Parallel()

	for _, from := range []order.Status{order.StatusPending, order.StatusPicked} {
		store := &fakeStore{}
		markers := &fakeMarkers{}
		gateway := &countingGateway{}
		hook := notify.NewHook("1", oneTenant{}, gateway, logger.NewNop())
		m := NewMachine("1", store, markers, logger.NewNop(), hook)

		o := sampleOrder()
		o.Status = from
		if err := m.Transition(context.Background(), &o, order.StatusInvoiced); err != nil {
			t.Fatalf("%s -> invoiced: expected success, got %v", from, err)
		}
		if o.Status != order.StatusInvoiced || o.Altered {
			t.Fatalf("%s -> invoiced: expected invoiced and not altered, got %s altered=%v", from, o.Status, o.Altered)
		}
		if len(store.payloads) != 1 || store.payloads[0].Status != order.StatusInvoiced {
			t.Fatalf("%s -> invoiced: expected one invoiced payload, got %+v", from, store.payloads)
		}
		if len(markers.acknowledged) != 1 || markers.acknowledged[0] != "100" {
			t.Fatalf("%s -> invoiced: expected marker acknowledged, got %v", from, markers.acknowledged)
		}
		if gateway.sent != 0 {
			t.Fatalf("%s -> invoiced: expected no notification, got %d", from, gateway.sent)
		}
	}
}

func TestTransitionPersistFailureKeepsOptimisticStatus(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("503 from store")
	store := &fakeStore{err: storeErr}
	markers := &fakeMarkers{}
	hookCalls := 0
	m := NewMachine("1", store, markers, logger.NewNop(), HookFunc(func(context.Context, order.Order, order.Status, order.Status) error {
		hookCalls++
		return nil
	}))

	o := sampleOrder()
	err := m.Transition(context.Background(), &o, order.StatusPicked)
	if !errors.Is(err, ErrPersist) || !errors.Is(err, storeErr) {
		t.Fatalf("expected ErrPersist wrapping the store error, got %v", err)
	}
	if o.Status != order.StatusPicked || o.Altered {
		t.Fatalf("expected optimistic status, got %s altered=%v", o.Status, o.Altered)
	}
	if len(markers.acknowledged) != 0 || hookCalls != 0 {
		t.Fatalf("expected no marker change and no hooks on failure")
	}
}

func TestTransitionHookFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	first := errors.New("gateway down")
	second := errors.New("template missing")
	ran := 0
	m := NewMachine("1", &fakeStore{}, &fakeMarkers{}, logger.NewNop(),
		HookFunc(func(context.Context, order.Order, order.Status, order.Status) error { ran++; return first }),
		HookFunc(func(context.Context, order.Order, order.Status, order.Status) error { ran++; return second }),
	)

	o := sampleOrder()
	err := m.Transition(context.Background(), &o, order.StatusPicked)
	if !errors.Is(err, ErrHook) || !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected ErrHook wrapping both failures, got %v", err)
	}
	if ran != 2 {
		t.Fatalf("expected every hook to run, ran %d", ran)
	}
	if o.Status != order.StatusPicked {
		t.Fatalf("expected transition kept, got %s", o.Status)
	}
}

func TestTransitionEmptyItemsKeepsKnownTotal(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	m := NewMachine("1", store, &fakeMarkers{}, logger.NewNop())

	o := sampleOrder()
	o.Items = nil
	o.Total = 42
	if err := m.Transition(context.Background(), &o, order.StatusPicked); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if store.payloads[0].Total != 42 {
		t.Fatalf("expected fallback total 42, got %v", store.payloads[0].Total)
	}
}

func TestEditContent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{reply: func(p order.Payload) order.Order {
		return order.Order{
			ID:     "100",
			Number: "A-100",
			Items:  []order.LineItem{{ID: "9", Name: "Leite", Quantity: 1.5, UnitPrice: 5}},
			Total:  7.5,
			Status: order.StatusPending,
		}
	}}
	markers := &fakeMarkers{}
	m := NewMachine("1", store, markers, logger.NewNop())

	o := sampleOrder()
	o.Altered = false
	note := "trocar por desnatado"
	err := m.EditContent(context.Background(), &o, Edit{
		Items: []order.LineItem{{Name: "Leite", Quantity: 1.5, UnitPrice: 5}},
		Note:  &note,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	if !o.Altered || len(markers.flagged) != 1 {
		t.Fatalf("expected order flagged altered")
	}
	if o.Number != "A-100" || o.Items[0].ID != "9" || o.Total != 7.5 || o.Note != note {
		t.Fatalf("expected merged authoritative record, got %+v", o)
	}
	p := store.payloads[0]
	if p.Total != 7.5 || p.Note == nil || *p.Note != note || p.Status != order.StatusPending {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestEditContentFailureKeepsLocalEdit(t *testing.T) {
	t.Parallel()

	markers := &fakeMarkers{}
	m := NewMachine("1", &fakeStore{err: errors.New("timeout")}, markers, logger.NewNop())

	o := sampleOrder()
	err := m.EditContent(context.Background(), &o, Edit{Items: []order.LineItem{{Name: "Leite", Quantity: 3, UnitPrice: 5}}})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if o.Total != 15 || o.Items[0].Quantity != 3 || !o.Altered || len(markers.flagged) != 1 {
		t.Fatalf("expected local edit retained, got %+v", o)
	}
}

func TestEditContentOnlyWhilePending(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	markers := &fakeMarkers{}
	m := NewMachine("1", store, markers, logger.NewNop())

	o := sampleOrder()
	o.Status = order.StatusPicked
	err := m.EditContent(context.Background(), &o, Edit{Items: []order.LineItem{{Name: "X", Quantity: 1, UnitPrice: 1}}})
	if !errors.Is(err, order.ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
	if len(store.payloads) != 0 || len(markers.flagged) != 0 || o.Total != 10 {
		t.Fatalf("expected no side effects")
	}
}

func TestStatusOnlyTransitionNeverAltered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := marker.NewStore(marker.NewMemoryKV(), logger.NewNop())
	tracker := reconcile.NewTracker(ctx, "1", store, logger.NewNop())

	o := sampleOrder()
	o.Altered = false
	tracker.Apply(ctx, []order.Order{o})

	m := NewMachine("1", &fakeStore{}, tracker, logger.NewNop())
	if err := m.Transition(ctx, &o, order.StatusPicked); err != nil {
		t.Fatalf("transition: %v", err)
	}

	res := tracker.Apply(ctx, []order.Order{o})
	if o.Altered || res.Orders[0].Altered {
		t.Fatalf("expected status-only transition to stay unaltered")
	}
}
