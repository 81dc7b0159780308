package device

import (
	"errors"
	"strings"
	"sync"

	"github.com/robgonnella/aegis/internal/event"
	"github.com/robgonnella/aegis/internal/exception"
	"github.com/robgonnella/aegis/internal/logger"
)

// DeviceService represents our device.Service implementation
type DeviceService struct {
	log          logger.Logger
	repo         Repo
	eventManager event.Manager
	mux          sync.Mutex
}

// NewService returns a new instance DeviceService
func NewService(repo Repo, eventManager event.Manager) *DeviceService {
	return &DeviceService{
		log:          logger.New(),
		repo:         repo,
		eventManager: eventManager,
		mux:          sync.Mutex{},
	}
}

// Upsert adds or updates a device keyed by mac. A nil nickname keeps the
// stored one and the blocked flag is never touched here.
func (s *DeviceService) Upsert(d *Device) (*Device, error) {
	if d == nil || d.MAC == "" {
		return nil, exception.ErrInvalidAddress
	}

	d.MAC = strings.ToLower(d.MAC)

	s.mux.Lock()
	defer s.mux.Unlock()

	existing, err := s.repo.GetByMAC(d.MAC)

	if err != nil && !errors.Is(err, exception.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if d.Nickname == nil {
			d.Nickname = existing.Nickname
		}

		d.Blocked = existing.Blocked
	}

	saved, err := s.repo.Save(d)

	if err != nil {
		return nil, err
	}

	s.sendUpdateEvent(saved)

	return saved, nil
}

// ListAll returns every stored device, most recently seen first
func (s *DeviceService) ListAll() ([]*Device, error) {
	return s.repo.GetAll()
}

// Get returns a single device by mac
func (s *DeviceService) Get(mac string) (*Device, error) {
	return s.repo.GetByMAC(strings.ToLower(mac))
}

// GetByIP returns the most recently seen device with the given ip
func (s *DeviceService) GetByIP(ip string) (*Device, error) {
	return s.repo.GetByIP(ip)
}

// Count returns the number of stored devices
func (s *DeviceService) Count() (int, error) {
	count, err := s.repo.Count()

	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// ClearAll removes all devices. Clearing an empty store is not an error.
func (s *DeviceService) ClearAll() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.log.Info().Msg("clearing all devices")

	return s.repo.DeleteAll()
}

// SetNickname sets a user supplied label for a device
func (s *DeviceService) SetNickname(mac, nickname string) (*Device, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	d, err := s.repo.GetByMAC(strings.ToLower(mac))

	if err != nil {
		return nil, err
	}

	d.Nickname = &nickname

	saved, err := s.repo.Save(d)

	if err != nil {
		return nil, err
	}

	s.sendUpdateEvent(saved)

	return saved, nil
}

// SetBlocked records the isolation state of the device with the given
// hardware address. Unknown addresses are ignored as isolation does not
// require a stored record.
func (s *DeviceService) SetBlocked(mac string, blocked bool) error {
	if mac == "" {
		return nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	d, err := s.repo.GetByMAC(strings.ToLower(mac))

	if errors.Is(err, exception.ErrRecordNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if d.Blocked == blocked {
		return nil
	}

	d.Blocked = blocked

	saved, err := s.repo.Save(d)

	if err != nil {
		return err
	}

	s.sendUpdateEvent(saved)

	return nil
}

func (s *DeviceService) sendUpdateEvent(d *Device) {
	if s.eventManager == nil {
		return
	}

	s.eventManager.Send(event.Event{
		Type:    event.DeviceUpdateEventType,
		Payload: d,
	})
}
