package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hemen47/coolgards-front-sub000/internal/alert"
	"github.com/hemen47/coolgards-front-sub000/internal/cart"
	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/persistence"
	"github.com/hemen47/coolgards-front-sub000/internal/storage"
	"github.com/hemen47/coolgards-front-sub000/internal/summary"
)

var (
	ErrInvalidSessionID = errors.New("invalid session id")
	ErrClosed           = errors.New("session manager closed")
	ErrSummaryNotReady  = errors.New("order summary is not up to date")
)

const (
	defaultLoadTimeout = 5 * time.Second
	defaultSaveTimeout = 2 * time.Second

	orderPlacedMessage = "Thank you, your order has been placed."
)

type Config struct {
	DefaultShipmentPlan string
	ClearCartOnOrder    bool
	RefreshTimeout      time.Duration
	LoadTimeout         time.Duration
	SaveTimeout         time.Duration
	BannerLimit         int
	AlertSubjectPrefix  string
}

// Session is one shopper's cart with its persistence mirror, summary
// refresher and alert banner.
type Session struct {
	ID      string
	Cart    *cart.Store
	Summary *summary.Refresher
	Alerts  *alert.Banner
	Notify  alert.Sink // banner plus log and optional NATS fan-out

	persist     *persistence.Adapter
	saveTimeout time.Duration
	logger      *zap.Logger
}

// Checkout returns the summary the shopper may pay for. It fails unless the
// displayed summary matches the current cart and shipment plan.
func (s *Session) Checkout() (summary.View, error) {
	view := s.Summary.View()
	if !view.Ready() {
		return view, ErrSummaryNotReady
	}
	return view, nil
}

func (s *Session) save(items []domain.LineItem) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.persist.Save(ctx, items); err != nil {
		s.logger.Warn("failed to persist cart", zap.Error(err))
	}
}

type Manager struct {
	kv        storage.KV
	pricer    summary.Pricer
	publisher alert.Publisher
	cfg       Config
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
	sfg      singleflight.Group
}

// NewManager builds a session manager. publisher may be nil, in which case
// alerts are not published.
func NewManager(kv storage.KV, pricer summary.Pricer, publisher alert.Publisher, cfg Config, logger *zap.Logger) *Manager {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = defaultSaveTimeout
	}
	if cfg.AlertSubjectPrefix == "" {
		cfg.AlertSubjectPrefix = "storefront.alerts"
	}
	return &Manager{
		kv:        kv,
		pricer:    pricer,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session for id, restoring its cart from storage the first
// time the id is seen.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidSessionID
	}
	if s, err := m.lookup(id); s != nil || err != nil {
		return s, err
	}

	// Concurrent first requests for one session share a single load.
	v, err, _ := m.sfg.Do(id, func() (any, error) {
		if s, err := m.lookup(id); s != nil || err != nil {
			return s, err
		}

		s := m.open(ctx, id)

		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			s.Summary.Close()
			return nil, ErrClosed
		}
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.sessions[id], nil
}

func (m *Manager) open(ctx context.Context, id string) *Session {
	logger := m.logger.With(zap.String("session_id", id))

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.LoadTimeout)
	defer cancel()
	adapter := persistence.NewAdapter(m.kv, persistence.Key(id), logger)
	items := adapter.Load(loadCtx)

	store := cart.NewStore()
	store.SetCart(items)

	banner := alert.NewBanner(m.cfg.BannerLimit)
	sinks := alert.Multi{banner, alert.NewLogSink(logger)}
	if m.publisher != nil {
		sinks = append(sinks, alert.NewNATSSink(m.publisher, m.cfg.AlertSubjectPrefix, id, logger))
	}

	s := &Session{
		ID:     id,
		Cart:   store,
		Alerts: banner,
		Notify: sinks,
		Summary: summary.NewRefresher(m.pricer, sinks, logger, summary.Options{
			ShipmentPlan: m.cfg.DefaultShipmentPlan,
			Timeout:      m.cfg.RefreshTimeout,
		}),
		persist:     adapter,
		saveTimeout: m.cfg.SaveTimeout,
		logger:      logger,
	}

	store.Subscribe(s.save)
	store.Subscribe(s.Summary.CartChanged)
	s.Summary.Start(store.Items())

	logger.Debug("session opened", zap.Int("items", len(items)))
	return s
}

// OrderPlaced handles a completed order for a session.
func (m *Manager) OrderPlaced(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if !m.cfg.ClearCartOnOrder {
		m.logger.Info("order placed, keeping cart", zap.String("session_id", id))
		return nil
	}
	s.Cart.Clear()
	s.Notify.Success(orderPlacedMessage)
	m.logger.Info("order placed, cart cleared", zap.String("session_id", id))
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session's refresher and waits for in-flight work.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Summary.Close()
	}
}
