package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubComponent struct {
	*BaseComponent
	optional bool
	startErr error
	journal  *[]string
}

func newStub(name string, journal *[]string, deps ...string) *stubComponent {
	return &stubComponent{BaseComponent: NewBaseComponent(name, deps...), journal: journal}
}

func (s *stubComponent) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	*s.journal = append(*s.journal, "start:"+s.Name())
	s.SetActive(true)
	return nil
}

func (s *stubComponent) Stop(ctx context.Context) error {
	*s.journal = append(*s.journal, "stop:"+s.Name())
	s.SetActive(false)
	return nil
}

func (s *stubComponent) Optional() bool { return s.optional }

func TestStartOrderAndReverseStop(t *testing.T) {
	var journal []string
	c := NewContainer()
	_ = c.Register(newStub("cache", &journal, "store"))
	_ = c.Register(newStub("store", &journal))

	lm := NewLifecycleManager(c, nil)
	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	lm.StopAll(context.Background())
	lm.StopAll(context.Background())

	want := []string{"start:store", "start:cache", "stop:cache", "stop:store"}
	if !reflect.DeepEqual(journal, want) {
		t.Fatalf("journal = %v, want %v", journal, want)
	}
}

func TestOptionalFailureDoesNotAbort(t *testing.T) {
	var journal []string
	c := NewContainer()
	opt := newStub("cache", &journal)
	opt.optional = true
	opt.startErr = errors.New("refused")
	_ = c.Register(opt)
	_ = c.Register(newStub("store", &journal))

	lm := NewLifecycleManager(c, nil)
	if err := lm.StartAll(context.Background()); err != nil {
		t.Fatalf("optional failure aborted start: %v", err)
	}
	if opt.IsActive() {
		t.Fatalf("failed optional component marked active")
	}
}

func TestRequiredFailureStopsStarted(t *testing.T) {
	var journal []string
	c := NewContainer()
	_ = c.Register(newStub("a", &journal))
	bad := newStub("b", &journal, "a")
	bad.startErr = errors.New("boom")
	_ = c.Register(bad)

	lm := NewLifecycleManager(c, nil)
	if err := lm.StartAll(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	want := []string{"start:a", "stop:a"}
	if !reflect.DeepEqual(journal, want) {
		t.Fatalf("journal = %v, want %v", journal, want)
	}
}

func TestStartSingleWithDependencies(t *testing.T) {
	var journal []string
	c := NewContainer()
	_ = c.Register(newStub("store", &journal))
	_ = c.Register(newStub("cache", &journal, "store"))

	lm := NewLifecycleManager(c, nil)
	if err := lm.Start(context.Background(), "cache"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := lm.Start(context.Background(), "store"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	want := []string{"start:store", "start:cache"}
	if !reflect.DeepEqual(journal, want) {
		t.Fatalf("journal = %v, want %v", journal, want)
	}
}

func TestCircularDependency(t *testing.T) {
	var journal []string
	c := NewContainer()
	_ = c.Register(newStub("a", &journal, "b"))
	_ = c.Register(newStub("b", &journal, "a"))
	if _, err := c.SortComponentsByDependencies(); err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestNoStartAfterStop(t *testing.T) {
	var journal []string
	c := NewContainer()
	_ = c.Register(newStub("store", &journal))
	lm := NewLifecycleManager(c, nil)
	lm.StopAll(context.Background())
	if err := lm.Start(context.Background(), "store"); err == nil {
		t.Fatalf("expected start after stop to fail")
	}
}
