package daemon

import (
	"sync"
	"time"

	"github.com/jmylchreest/bannerd/internal/clock"
)

// DisplayStatus represents where a banner is in its presentation.
type DisplayStatus int

const (
	// DisplayStatusPending means the banner is queued.
	DisplayStatusPending DisplayStatus = iota
	// DisplayStatusActive means the banner is on screen.
	DisplayStatusActive
	// DisplayStatusExpired means the banner timed out or was dropped.
	DisplayStatusExpired
	// DisplayStatusDismissed means the user dismissed the banner.
	DisplayStatusDismissed
	// DisplayStatusClosed means the banner was closed programmatically.
	DisplayStatusClosed
	// DisplayStatusReplaced means a newer banner took over its id.
	DisplayStatusReplaced
)

// String returns the string representation of DisplayStatus.
func (s DisplayStatus) String() string {
	switch s {
	case DisplayStatusPending:
		return "pending"
	case DisplayStatusActive:
		return "active"
	case DisplayStatusExpired:
		return "expired"
	case DisplayStatusDismissed:
		return "dismissed"
	case DisplayStatusClosed:
		return "closed"
	case DisplayStatusReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Done reports whether the status is terminal.
func (s DisplayStatus) Done() bool {
	return s >= DisplayStatusExpired
}

// DisplayState maps a banner to the D-Bus notification id it answers for.
type DisplayState struct {
	BannerID  string
	DBusID    uint32
	Status    DisplayStatus
	CreatedAt time.Time
	ShownAt   time.Time // zero until the banner becomes visible
	ClosedAt  time.Time
}

// Visible returns how long the banner was on screen.
func (s *DisplayState) Visible() time.Duration {
	if s.ShownAt.IsZero() || s.ClosedAt.IsZero() {
		return 0
	}
	return s.ClosedAt.Sub(s.ShownAt)
}

// DisplayStateManager manages the mapping between banner ids and D-Bus
// notification ids. A D-Bus id belongs to at most one banner; registering
// a replacement moves ownership to the new banner.
type DisplayStateManager struct {
	mu    sync.RWMutex
	clock clock.Clock

	byBannerID map[string]*DisplayState
	byDBusID   map[uint32]string
}

// NewDisplayStateManager creates a new DisplayStateManager.
func NewDisplayStateManager(clk clock.Clock) *DisplayStateManager {
	if clk == nil {
		clk = clock.Real()
	}
	return &DisplayStateManager{
		clock:      clk,
		byBannerID: make(map[string]*DisplayState),
		byDBusID:   make(map[uint32]string),
	}
}

// Register adds a pending banner. An earlier banner holding the same
// D-Bus id is marked replaced and returned.
func (m *DisplayStateManager) Register(bannerID string, dbusID uint32) (state, replaced *DisplayState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldID, exists := m.byDBusID[dbusID]; exists && oldID != bannerID {
		if old := m.byBannerID[oldID]; old != nil && !old.Status.Done() {
			old.Status = DisplayStatusReplaced
			old.ClosedAt = m.clock.Now()
			replaced = old
		}
	}

	state = &DisplayState{
		BannerID:  bannerID,
		DBusID:    dbusID,
		Status:    DisplayStatusPending,
		CreatedAt: m.clock.Now(),
	}
	m.byBannerID[bannerID] = state
	m.byDBusID[dbusID] = bannerID
	return state, replaced
}

// Get returns the state for a banner id.
func (m *DisplayStateManager) Get(bannerID string) *DisplayState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byBannerID[bannerID]
}

// GetByDBusID returns the state of the banner owning a D-Bus id.
func (m *DisplayStateManager) GetByDBusID(dbusID uint32) *DisplayState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bannerID, exists := m.byDBusID[dbusID]
	if !exists {
		return nil
	}
	return m.byBannerID[bannerID]
}

// MarkShown records that a banner became visible.
func (m *DisplayStateManager) MarkShown(bannerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, exists := m.byBannerID[bannerID]; exists && !state.Status.Done() {
		state.Status = DisplayStatusActive
		state.ShownAt = m.clock.Now()
	}
}

// Close finalizes a banner and forgets it. owner is true when the banner
// still held its D-Bus id, meaning the caller should report the close.
func (m *DisplayStateManager) Close(bannerID string, status DisplayStatus) (state *DisplayState, owner bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.byBannerID[bannerID]
	if !exists {
		return nil, false
	}
	delete(m.byBannerID, bannerID)

	owner = m.byDBusID[state.DBusID] == bannerID
	if owner {
		delete(m.byDBusID, state.DBusID)
	}
	if state.Status != DisplayStatusReplaced {
		state.Status = status
		state.ClosedAt = m.clock.Now()
	}
	return state, owner
}

// Count returns the number of tracked banners.
func (m *DisplayStateManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byBannerID)
}

// ActiveCount returns the number of visible banners.
func (m *DisplayStateManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, state := range m.byBannerID {
		if state.Status == DisplayStatusActive {
			count++
		}
	}
	return count
}
