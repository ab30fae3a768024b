package summary

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/alert"
	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/pricing"
)

const (
	defaultTimeout = 10 * time.Second

	// GenericErrorMessage is shown when the pricing API gave no reason.
	GenericErrorMessage = "We could not update your order summary. Please try again."
)

// Pricer computes authoritative totals for a cart.
type Pricer interface {
	PriceCart(ctx context.Context, items []domain.LineItem, shipmentPlanID string) (*domain.Quote, error)
}

type Options struct {
	ShipmentPlan string        // initially selected plan
	Timeout      time.Duration // per pricing call
}

// Refresher keeps the displayed order summary in step with the cart and the
// selected shipment plan. Every request gets a sequence number; only the
// response to the newest request is ever applied, and starting a request
// cancels the one before it.
type Refresher struct {
	pricer  Pricer
	alerts  alert.Sink
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	issued uint64
	cancel context.CancelFunc
	items  []domain.LineItem
	plan   string
	view   View
	closed bool

	wg sync.WaitGroup
}

func NewRefresher(pricer Pricer, alerts alert.Sink, logger *zap.Logger, opts Options) *Refresher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Refresher{
		pricer:  pricer,
		alerts:  alerts,
		logger:  logger,
		timeout: timeout,
		plan:    opts.ShipmentPlan,
		items:   []domain.LineItem{},
		view:    View{State: StateIdle, ShipmentPlan: opts.ShipmentPlan},
	}
}

// Start performs the initial refresh for a freshly loaded cart. Nothing is
// requested for an empty cart.
func (r *Refresher) Start(items []domain.LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = domain.CloneItems(items)
	if len(items) == 0 {
		return
	}
	r.triggerLocked()
}

// CartChanged records the new cart and refreshes in the background.
func (r *Refresher) CartChanged(items []domain.LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = domain.CloneItems(items)
	r.triggerLocked()
}

// SelectShipment records the selected plan and refreshes in the background.
func (r *Refresher) SelectShipment(planID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = planID
	r.triggerLocked()
}

// ShipmentPlan returns the selected plan.
func (r *Refresher) ShipmentPlan() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plan
}

// Refresh prices items with planID and waits for the outcome. Failures are
// reported to the alert sink and reflected in the returned view, never
// returned as errors.
func (r *Refresher) Refresh(ctx context.Context, items []domain.LineItem, planID string) View {
	r.mu.Lock()
	if r.closed {
		view := r.view.clone()
		r.mu.Unlock()
		return view
	}
	r.items = domain.CloneItems(items)
	r.plan = planID
	seq, reqCtx, cancel := r.beginLocked(ctx)
	r.mu.Unlock()

	quote, err := r.pricer.PriceCart(reqCtx, domain.CloneItems(items), planID)
	r.finish(seq, planID, quote, err, cancel)
	return r.View()
}

// View returns the current display state.
func (r *Refresher) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.clone()
}

// Wait blocks until background refreshes have settled.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

// Close cancels any in-flight request, discards its result and waits for
// background work to stop. Later triggers are ignored.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.closed = true
	r.issued++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Refresher) triggerLocked() {
	if r.closed {
		return
	}
	items := domain.CloneItems(r.items)
	plan := r.plan
	seq, ctx, cancel := r.beginLocked(context.Background())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		quote, err := r.pricer.PriceCart(ctx, items, plan)
		r.finish(seq, plan, quote, err, cancel)
	}()
}

// beginLocked issues the next sequence number and supersedes the request in
// flight, if any.
func (r *Refresher) beginLocked(parent context.Context) (uint64, context.Context, context.CancelFunc) {
	r.issued++
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	r.cancel = cancel
	r.view.State = StateLoading
	r.view.ShipmentPlan = r.plan
	r.view.Err = ""
	return r.issued, ctx, cancel
}

func (r *Refresher) finish(seq uint64, plan string, quote *domain.Quote, err error, cancel context.CancelFunc) {
	cancel()

	r.mu.Lock()
	if seq != r.issued {
		r.mu.Unlock()
		r.logger.Debug("discarding superseded pricing response", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	r.cancel = nil

	if err != nil {
		msg := pricing.UserMessage(err, GenericErrorMessage)
		if r.view.Summary != nil {
			r.view.State = StateStale
		} else {
			r.view.State = StateIdle
		}
		r.view.Err = msg
		r.mu.Unlock()

		r.logger.Warn("order summary refresh failed", zap.Uint64("seq", seq), zap.Error(err))
		r.alerts.Error(msg)
		return
	}

	orderInfo := quote.OrderInfo
	r.view = View{
		State:        StateDisplayed,
		Summary:      &orderInfo,
		Cart:         domain.CloneItems(quote.Cart),
		ShipmentPlan: plan,
		Seq:          seq,
	}
	r.mu.Unlock()
}
