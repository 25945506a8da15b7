// Package projection holds the in-memory view of terminal state that the
// dashboard renders. It is a cache of the external system of record: events
// are applied last-write-wins per entity key and nothing is persisted.
package projection

import (
	"fmt"
	"strings"
	"sync"

	"terminal-voice-backend/internal/event"
	"terminal-voice-backend/internal/model"
)

// Snapshot is a point-in-time copy of the projection. Slices are in
// insertion order and share no memory with the store.
type Snapshot struct {
	Containers  []model.Container `json:"containers"`
	Vessels     []model.Vessel    `json:"vessels"`
	Gatepasses  []model.Gatepass  `json:"gatepasses"`
	SSRRequests []model.SSR       `json:"ssrRequests"`
}

// Seed is the initial content of a Store.
type Seed struct {
	Containers []model.Container
	Vessels    []model.Vessel
}

// Store is safe for concurrent use. Each Apply is atomic with respect to
// Snapshot and the lookup methods.
type Store struct {
	mu sync.RWMutex

	containers     map[string]model.Container
	containerOrder []string
	vessels        map[string]model.Vessel
	vesselOrder    []string
	gatepasses     map[string]model.Gatepass
	gatepassOrder  []string
	ssrs           map[string]model.SSR
	ssrOrder       []string
}

// New creates a store holding the seed entities.
func New(seed Seed) *Store {
	s := &Store{
		containers: make(map[string]model.Container),
		vessels:    make(map[string]model.Vessel),
		gatepasses: make(map[string]model.Gatepass),
		ssrs:       make(map[string]model.SSR),
	}
	for _, c := range seed.Containers {
		s.putContainer(c)
	}
	for _, v := range seed.Vessels {
		s.putVessel(v)
	}
	return s
}

// Apply folds one event into the projection.
func (s *Store) Apply(ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := event.Dispatch(ev, applier{s}); err != nil {
		return fmt.Errorf("apply event: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the whole projection taken under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Containers:  make([]model.Container, 0, len(s.containerOrder)),
		Vessels:     make([]model.Vessel, 0, len(s.vesselOrder)),
		Gatepasses:  make([]model.Gatepass, 0, len(s.gatepassOrder)),
		SSRRequests: make([]model.SSR, 0, len(s.ssrOrder)),
	}
	for _, k := range s.containerOrder {
		snap.Containers = append(snap.Containers, s.containers[k].Clone())
	}
	for _, k := range s.vesselOrder {
		snap.Vessels = append(snap.Vessels, s.vessels[k])
	}
	for _, k := range s.gatepassOrder {
		snap.Gatepasses = append(snap.Gatepasses, s.gatepasses[k])
	}
	for _, k := range s.ssrOrder {
		snap.SSRRequests = append(snap.SSRRequests, cloneSSR(s.ssrs[k]))
	}
	return snap
}

// Container returns a copy of the container with the given number.
func (s *Store) Container(number string) (model.Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[number]
	if !ok {
		return model.Container{}, false
	}
	return c.Clone(), true
}

// Vessels returns every vessel in insertion order.
func (s *Store) Vessels() []model.Vessel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Vessel, 0, len(s.vesselOrder))
	for _, k := range s.vesselOrder {
		out = append(out, s.vessels[k])
	}
	return out
}

// FindVessel returns the first vessel whose name contains name, ignoring
// case. When name is empty the voyage number is matched exactly after
// upper-casing.
func (s *Store) FindVessel(name, voyage string) (model.Vessel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	voyage = strings.ToUpper(strings.TrimSpace(voyage))
	for _, k := range s.vesselOrder {
		v := s.vessels[k]
		switch {
		case name != "":
			if strings.Contains(strings.ToLower(v.VesselName), name) {
				return v, true
			}
		case voyage != "":
			if v.VoyageNumber == voyage {
				return v, true
			}
		}
	}
	return model.Vessel{}, false
}

func (s *Store) Gatepass(id string) (model.Gatepass, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gatepasses[id]
	return g, ok
}

func (s *Store) SSR(id string) (model.SSR, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ssrs[id]
	if !ok {
		return model.SSR{}, false
	}
	return cloneSSR(r), true
}

// The put helpers require s.mu to be held for writing.

func (s *Store) putContainer(c model.Container) {
	if _, ok := s.containers[c.ContainerNumber]; !ok {
		s.containerOrder = append(s.containerOrder, c.ContainerNumber)
	}
	s.containers[c.ContainerNumber] = c.Clone()
}

func (s *Store) putVessel(v model.Vessel) {
	if _, ok := s.vessels[v.VesselName]; !ok {
		s.vesselOrder = append(s.vesselOrder, v.VesselName)
	}
	s.vessels[v.VesselName] = v
}

func (s *Store) putGatepass(g model.Gatepass) {
	if _, ok := s.gatepasses[g.ID]; !ok {
		s.gatepassOrder = append(s.gatepassOrder, g.ID)
	}
	s.gatepasses[g.ID] = g
}

func (s *Store) putSSR(r model.SSR) {
	if _, ok := s.ssrs[r.ID]; !ok {
		s.ssrOrder = append(s.ssrOrder, r.ID)
	}
	s.ssrs[r.ID] = cloneSSR(r)
}

// applier is the reducer, one case per event variant.
type applier struct{ s *Store }

func (a applier) VisitContainerQueried(e event.ContainerQueried) error {
	if _, ok := a.s.containers[e.ContainerNumber]; !ok && e.Container.ContainerNumber != "" {
		a.s.putContainer(e.Container)
	}
	return nil
}

func (a applier) VisitContainerUpdated(e event.ContainerUpdated) error {
	c := e.Container
	if c.ContainerNumber == "" {
		return fmt.Errorf("container update for %s carries no state", e.ContainerNumber)
	}
	a.s.putContainer(c)
	return nil
}

func (a applier) VisitGatepassGenerated(e event.GatepassGenerated) error {
	a.s.putGatepass(e.Gatepass)
	if c, ok := a.s.containers[e.ContainerNumber]; ok {
		id := e.Gatepass.ID
		c.ActiveGatepass = &id
		a.s.containers[e.ContainerNumber] = c
	}
	return nil
}

func (a applier) VisitVesselQueried(e event.VesselQueried) error {
	if _, ok := a.s.vessels[e.Vessel.VesselName]; !ok && e.Vessel.VesselName != "" {
		a.s.putVessel(e.Vessel)
	}
	return nil
}

func (a applier) VisitSSRSubmitted(e event.SSRSubmitted) error {
	a.s.putSSR(e.SSR)
	if c, ok := a.s.containers[e.ContainerNumber]; ok {
		c.SSRHistory = append(append([]string{}, c.SSRHistory...), e.SSR.ID)
		a.s.containers[e.ContainerNumber] = c
	}
	return nil
}

func (a applier) VisitSSRUpdated(e event.SSRUpdated) error {
	r, ok := a.s.ssrs[e.SSRID]
	if !ok {
		return fmt.Errorf("ssr %s not in projection", e.SSRID)
	}
	r.Status = e.NewStatus
	at := e.Timestamp
	r.UpdatedAt = &at
	a.s.ssrs[e.SSRID] = r
	return nil
}

func cloneSSR(r model.SSR) model.SSR {
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		r.UpdatedAt = &t
	}
	return r
}
