// Package memory is the default backend: seed data held in process memory.
// Deletes and registrations last for the life of the process.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"eventdash/internal/core"
)

type Store struct {
	mu            sync.RWMutex
	events        []core.Event
	participants  map[string][]core.Participant
	feedback      []core.Feedback
	registrations []core.Registration
	qrStatuses    map[string][]core.QRStatus
}

// New loads data into a store, deriving every event's status from today.
func New(data Data, today core.Date) *Store {
	s := &Store{
		events:       make([]core.Event, 0, len(data.Events)),
		participants: make(map[string][]core.Participant),
		feedback:     slices.Clone(data.Feedback),
		qrStatuses:   make(map[string][]core.QRStatus),
	}
	for _, e := range data.Events {
		e.Status = core.DeriveStatus(e.Date, today)
		s.events = append(s.events, e)
	}
	for _, p := range data.Participants {
		s.participants[p.EventID] = append(s.participants[p.EventID], p)
	}
	return s
}

// NewFromDir seeds from <dir>/seed.yaml or the embedded default.
func NewFromDir(dir string, today core.Date) (*Store, error) {
	data, err := LoadSeedDir(dir)
	if err != nil {
		return nil, err
	}
	return New(data, today), nil
}

func (s *Store) ListEvents(_ context.Context) ([]core.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

func (s *Store) GetEvent(_ context.Context, id string) (core.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Event{}, notFound(id)
	}
	return s.events[i], nil
}

// DeleteEvent removes the event with its participants, feedback and QR
// settings.
func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	s.events = slices.Delete(s.events, i, i+1)
	delete(s.participants, id)
	delete(s.qrStatuses, id)
	s.feedback = slices.DeleteFunc(s.feedback, func(f core.Feedback) bool { return f.EventID == id })
	return nil
}

func (s *Store) ListParticipants(_ context.Context, eventID string) ([]core.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indexOf(eventID) < 0 {
		return nil, notFound(eventID)
	}
	out := slices.Clone(s.participants[eventID])
	if out == nil {
		out = []core.Participant{}
	}
	return out, nil
}

func (s *Store) ListFeedback(_ context.Context, eventID string) ([]core.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if eventID != "" && s.indexOf(eventID) < 0 {
		return nil, notFound(eventID)
	}
	out := make([]core.Feedback, 0, len(s.feedback))
	for _, f := range s.feedback {
		if eventID == "" || f.EventID == eventID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Store) AppendRegistration(_ context.Context, reg core.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(reg.EventID) < 0 {
		return notFound(reg.EventID)
	}
	s.registrations = append(s.registrations, reg)
	return nil
}

func (s *Store) ListRegistrations(_ context.Context, eventID string) ([]core.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Registration{}
	for _, r := range s.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) QRStatuses(_ context.Context, eventID string) ([]core.QRStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indexOf(eventID) < 0 {
		return nil, notFound(eventID)
	}
	out := slices.Clone(s.qrStatuses[eventID])
	if out == nil {
		out = []core.QRStatus{}
	}
	return out, nil
}

func (s *Store) SetQRStatuses(_ context.Context, eventID string, statuses []core.QRStatus) error {
	for _, st := range statuses {
		if !st.IsValid() {
			return fmt.Errorf("%w: QR status %q", core.ErrInvalidArgument, st)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(eventID) < 0 {
		return notFound(eventID)
	}
	s.qrStatuses[eventID] = slices.Clone(statuses)
	return nil
}

func (s *Store) RefreshStatuses(_ context.Context, today core.Date) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.events {
		status := core.DeriveStatus(s.events[i].Date, today)
		if s.events[i].Status != status {
			s.events[i].Status = status
			changed++
		}
	}
	return changed, nil
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.events, func(e core.Event) bool { return e.ID == id })
}

func notFound(id string) error {
	return fmt.Errorf("event %q: %w", id, core.ErrNotFound)
}
