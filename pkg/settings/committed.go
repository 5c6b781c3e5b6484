package settings

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/files"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Committed is the externally owned settings the draft is seeded from
type Committed interface {
	Settings() models.Settings
	SetSetting(field models.Field, value any) error
	Replace(settings models.Settings) error
}

// CommittedStore keeps the committed settings in settings.yaml and
// publishes settings:changed after every change. An empty root keeps the
// settings in memory only.
type CommittedStore struct {
	mu       sync.Mutex
	pubMu    sync.Mutex
	root     string
	settings models.Settings
	bus      *events.Bus
	logger   *zap.Logger
}

// OpenCommittedStore loads settings.yaml from root, falling back to defaults
func OpenCommittedStore(root string, bus *events.Bus, logger *zap.Logger) (*CommittedStore, error) {
	loaded, err := files.ReadSettings(root)
	if err != nil {
		return nil, err
	}
	store := NewMemoryCommittedStore(*loaded, bus, logger)
	store.root = root
	return store, nil
}

// NewMemoryCommittedStore keeps settings in memory only
func NewMemoryCommittedStore(initial models.Settings, bus *events.Bus, logger *zap.Logger) *CommittedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	initial.LoadBalance = models.NormalizeLoadBalance(initial.LoadBalance)
	return &CommittedStore{
		settings: initial,
		bus:      bus,
		logger:   logger,
	}
}

func (s *CommittedStore) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetSetting commits one field
func (s *CommittedStore) SetSetting(field models.Field, value any) error {
	s.mu.Lock()
	next, err := ApplyField(s.settings, field, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.settings = next
	s.mu.Unlock()

	s.logger.Debug("setting committed", zap.String("field", string(field)), zap.Any("value", value))
	s.publish()
	return nil
}

// Replace commits a whole settings model, as restore and reset do
func (s *CommittedStore) Replace(settings models.Settings) error {
	settings.LoadBalance = models.NormalizeLoadBalance(settings.LoadBalance)

	s.mu.Lock()
	if err := s.persist(settings); err != nil {
		s.mu.Unlock()
		return err
	}
	s.settings = settings
	s.mu.Unlock()

	s.logger.Info("settings replaced")
	s.publish()
	return nil
}

func (s *CommittedStore) persist(settings models.Settings) error {
	if s.root == "" {
		return nil
	}
	if err := files.WriteSettings(s.root, &settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// publish sends the latest settings, so the last event observed always
// matches the store even when commits race
func (s *CommittedStore) publish() {
	if s.bus == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.bus.PublishSettings(s.Settings())
}
