package view

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/notify"
	"github.com/yourusername/jobhunter-dashboard/internal/optimistic"
)

// ProxyKeyField is the portal_config entry holding a scraping proxy key
const ProxyKeyField = "scraperapi_key"

// DefaultPriority is shown for portals the user has no setting for
const DefaultPriority = 99

// ErrNoProxyKey is returned when a proxy test is asked for without a key
var ErrNoProxyKey = errors.New("no API key entered")

// Portals is the portal configuration page. Enabling and prioritising
// portals is optimistic; saving proxy config is not.
type Portals struct {
	deps     Deps
	settings *optimistic.Collection[string, model.UserPortalSetting]

	mu      sync.Mutex
	portals []model.Portal
	apiKeys map[string]string
	loading bool
	loadErr string
}

func NewPortals(deps Deps) *Portals {
	return &Portals{
		deps: deps,
		settings: optimistic.NewCollection(func(s model.UserPortalSetting) string {
			return s.PortalID
		}),
		apiKeys: map[string]string{},
		loading: true,
	}
}

// Load fetches the catalog and the user's settings. Missing settings are
// initialized with one update per portal before fetching them again.
func (v *Portals) Load(ctx context.Context) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.loading = true
	v.loadErr = ""
	v.mu.Unlock()

	err = v.load(ctx, userID)

	v.mu.Lock()
	v.loading = false
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch portals")
		v.loadErr = "Failed to load portal data. Please try again."
	}
	v.mu.Unlock()
	return err
}

func (v *Portals) load(ctx context.Context, userID string) error {
	portals, err := v.deps.API.GetPortals(ctx)
	if err != nil {
		return fmt.Errorf("fetching portals: %w", err)
	}
	v.mu.Lock()
	v.portals = portals
	v.mu.Unlock()

	settings, err := v.deps.API.GetUserPortals(ctx, userID)
	if err != nil {
		log.Info().Err(err).Msg("No user portal settings found, initializing")
		v.settings.Replace(nil)
		if len(portals) == 0 {
			return nil
		}
		v.initialize(ctx, userID, portals)

		settings, err = v.deps.API.GetUserPortals(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetching initialized portal settings: %w", err)
		}
	}

	v.settings.Replace(settings)

	keys := map[string]string{}
	for _, s := range settings {
		if key, ok := s.PortalConfig[ProxyKeyField].(string); ok && key != "" {
			keys[s.PortalID] = key
		}
	}
	v.mu.Lock()
	v.apiKeys = keys
	v.mu.Unlock()
	return nil
}

// initialize creates a default setting per portal. Individual failures
// are logged and skipped.
func (v *Portals) initialize(ctx context.Context, userID string, portals []model.Portal) {
	for i, p := range portals {
		enabled := p.IsActive
		priority := i + 1
		_, err := v.deps.API.UpdateUserPortal(ctx, userID, p.ID, model.PortalUpdate{
			IsEnabled: &enabled,
			Priority:  &priority,
		})
		if err != nil {
			log.Warn().Err(err).Str("portal", p.ID).Msg("Failed to init portal")
		}
	}
}

// Setting returns the user's setting for portalID, or a disabled default
func (v *Portals) Setting(portalID string) model.UserPortalSetting {
	if s, ok := v.settings.Get(portalID); ok {
		return s
	}
	return model.UserPortalSetting{
		ID:        portalID,
		PortalID:  portalID,
		IsEnabled: false,
		Priority:  DefaultPriority,
	}
}

func (v *Portals) placeholder(portalID string) func() model.UserPortalSetting {
	return func() model.UserPortalSetting {
		return model.UserPortalSetting{
			ID:       "temp-" + uuid.NewString(),
			PortalID: portalID,
			Priority: 1,
		}
	}
}

// commit sends update and pins the reply to portalID so the record stays
// addressable even when the backend omits portal_id
func (v *Portals) commit(userID, portalID string, update model.PortalUpdate) func(ctx context.Context) (model.UserPortalSetting, error) {
	return func(ctx context.Context) (model.UserPortalSetting, error) {
		saved, err := v.deps.API.UpdateUserPortal(ctx, userID, portalID, update)
		if err != nil {
			return model.UserPortalSetting{}, err
		}
		if saved.PortalID == "" {
			saved.PortalID = portalID
		}
		return *saved, nil
	}
}

// Toggle enables or disables a portal. The change shows immediately and
// is rolled back if the backend refuses it.
func (v *Portals) Toggle(ctx context.Context, portalID string, enabled bool) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	_, err = v.settings.Mutate(ctx, optimistic.Mutation[string, model.UserPortalSetting]{
		Key:         portalID,
		Placeholder: v.placeholder(portalID),
		Apply: func(s model.UserPortalSetting) model.UserPortalSetting {
			s.IsEnabled = enabled
			return s
		},
		Commit: v.commit(userID, portalID, model.PortalUpdate{IsEnabled: &enabled}),
		Merge: func(local, server model.UserPortalSetting) model.UserPortalSetting {
			local.ID = server.ID
			local.IsEnabled = server.IsEnabled
			local.Priority = server.Priority
			return local
		},
	})
	if err != nil {
		log.Error().Err(err).Str("portal", portalID).Msg("Failed to update portal setting")
		v.deps.toast("Failed to update portal setting", notify.Error)
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	v.deps.toast(portalID+" "+state, notify.Success)
	return nil
}

// SetPriority changes a portal's priority, 1 being the highest. Only an
// enabled portal has a priority to change.
func (v *Portals) SetPriority(ctx context.Context, portalID string, priority int) error {
	if limit := v.deps.Catalog.MaxPriority; priority < 1 || (limit > 0 && priority > limit) {
		return fmt.Errorf("%w: priority %d out of range", ErrInvalid, priority)
	}
	if !v.Setting(portalID).IsEnabled {
		return fmt.Errorf("%w: portal %s is disabled", ErrInvalid, portalID)
	}
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	_, err = v.settings.Mutate(ctx, optimistic.Mutation[string, model.UserPortalSetting]{
		Key: portalID,
		Apply: func(s model.UserPortalSetting) model.UserPortalSetting {
			s.Priority = priority
			return s
		},
		Commit: v.commit(userID, portalID, model.PortalUpdate{Priority: &priority}),
		Merge: func(local, server model.UserPortalSetting) model.UserPortalSetting {
			local.ID = server.ID
			local.Priority = server.Priority
			return local
		},
	})
	if err != nil {
		log.Error().Err(err).Str("portal", portalID).Msg("Failed to update priority")
		v.deps.toast("Failed to update priority", notify.Error)
		return err
	}

	v.deps.toast("Priority updated", notify.Success)
	return nil
}

// SaveConfig stores a proxy key in the portal's config, keeping any other
// config entries
func (v *Portals) SaveConfig(ctx context.Context, portalID, apiKey string) error {
	userID, err := v.deps.userID()
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.apiKeys[portalID] = apiKey
	v.mu.Unlock()

	config := maps.Clone(v.Setting(portalID).PortalConfig)
	if config == nil {
		config = map[string]any{}
	}
	config[ProxyKeyField] = apiKey

	saved, err := v.deps.API.UpdateUserPortal(ctx, userID, portalID, model.PortalUpdate{PortalConfig: config})
	if err != nil {
		log.Error().Err(err).Str("portal", portalID).Msg("Failed to save portal config")
		v.deps.toast("Failed to save configuration", notify.Error)
		return err
	}

	v.settings.Update(portalID, func(s model.UserPortalSetting) model.UserPortalSetting {
		s.PortalConfig = saved.PortalConfig
		return s
	})
	v.deps.toast(portalID+" configuration saved", notify.Success)
	return nil
}

// TestKey checks a proxy key through the backend. An empty apiKey falls
// back to the key last entered for portalID.
func (v *Portals) TestKey(ctx context.Context, portalID, apiKey string) error {
	if apiKey == "" {
		v.mu.Lock()
		apiKey = v.apiKeys[portalID]
		v.mu.Unlock()
	}
	if apiKey == "" {
		v.deps.toast("Please enter an API key first", notify.Error)
		return ErrNoProxyKey
	}

	result, err := v.deps.API.TestProxy(ctx, apiKey)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Connection failed"
		}
		v.deps.toast(msg, notify.Error)
		return err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "Connection failed"
		}
		v.deps.toast(msg, notify.Error)
		return errors.New(msg)
	}

	v.deps.toast("Connection successful! Proxy is working.", notify.Success)
	return nil
}

type PortalRow struct {
	Portal        model.Portal            `json:"portal"`
	Setting       model.UserPortalSetting `json:"setting"`
	SupportsProxy bool                    `json:"supportsProxy"`
	APIKey        string                  `json:"apiKey,omitempty"`
}

type PortalsSnapshot struct {
	Loading bool        `json:"loading"`
	Error   string      `json:"error,omitempty"`
	Portals []PortalRow `json:"portals"`
}

func (v *Portals) Snapshot() PortalsSnapshot {
	v.mu.Lock()
	portals := slices.Clone(v.portals)
	keys := maps.Clone(v.apiKeys)
	snap := PortalsSnapshot{Loading: v.loading, Error: v.loadErr}
	v.mu.Unlock()

	snap.Portals = make([]PortalRow, 0, len(portals))
	for _, p := range portals {
		snap.Portals = append(snap.Portals, PortalRow{
			Portal:        p,
			Setting:       v.Setting(p.ID),
			SupportsProxy: slices.Contains(v.deps.Catalog.ProxyPortals, p.ID),
			APIKey:        keys[p.ID],
		})
	}
	return snap
}
