package session

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/calc"
	"github.com/kiranalabs/lib-billing/billing/catalog"
	"github.com/kiranalabs/lib-billing/billing/lineitem"
	"github.com/kiranalabs/lib-billing/billing/log"
	"github.com/kiranalabs/lib-billing/billing/offer"
	"github.com/kiranalabs/lib-billing/billing/party"
	"github.com/kiranalabs/lib-billing/billing/trading"
)

// DefaultDebounce is the edit-coalescing window before a calculation
// request is issued.
const DefaultDebounce = 300 * time.Millisecond

const defaultEventBuffer = 16

// Calculator issues pricing/discount calculations. Satisfied by
// *calc.Client.
type Calculator interface {
	Calculate(ctx context.Context, request calc.Request) (calc.Response, error)
}

// TransactionService persists transactions. Satisfied by *trading.Client.
type TransactionService interface {
	CreateTransaction(ctx context.Context, payload trading.Payload) (trading.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, payload trading.Payload) (trading.Transaction, error)
}

// Config configures a transaction-edit session.
type Config struct {
	// Type selects sale or purchase semantics. Purchases never call the
	// calculator.
	Type trading.Type
	// Date is the transaction date (YYYY-MM-DD). Defaults to today.
	Date string
	// Debounce is the edit-coalescing window. Defaults to DefaultDebounce.
	Debounce time.Duration
	// Calculator is required for sale sessions.
	Calculator Calculator
	// Resolver backs product selection and free-item id backfill.
	Resolver *catalog.Resolver
	// Transactions persists the final payload.
	Transactions TransactionService
	// Logger defaults to a no-op logger.
	Logger log.Logger
	// EventBuffer sizes the event channel. Defaults to 16.
	EventBuffer int
}

// Session owns the state of one in-progress transaction edit. Each
// session has an isolated store, exclusion set, and offer cache; nothing
// is shared across sessions.
type Session struct {
	mu  sync.Mutex
	cfg Config

	store      *lineitem.Store
	exclusions *offer.ExclusionSet

	totals    calc.Totals
	applied   []offer.Applied
	available []offer.Available

	customer    *party.Party
	date        string
	paidAmount  decimal.Decimal
	paymentMode string
	notes       string

	editMode  bool
	editingID string

	timer *time.Timer
	// pendingRequestID fences calculator responses: only the most
	// recently issued request may apply its result.
	pendingRequestID string
	// lastFingerprint is the store fingerprint at the last time the sync
	// observed it; unchanged fingerprints do not restart the debounce.
	lastFingerprint string

	closed bool
	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	logger log.Logger
}

// New creates a session ready for editing. Sale sessions require a
// Calculator.
func New(cfg Config) (*Session, error) {
	if cfg.Type != trading.TypeSale && cfg.Type != trading.TypePurchase {
		return nil, billing.NewDomainError(billing.ErrorInvalidInput, "type", "unknown transaction type")
	}

	if cfg.Type.UsesDiscountRules() && cfg.Calculator == nil {
		return nil, billing.NewDomainError(billing.ErrorInvalidInput, "calculator", "sale sessions require a calculator")
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	if cfg.Date == "" {
		cfg.Date = time.Now().Format("2006-01-02")
	}

	if cfg.Logger == nil {
		cfg.Logger = &log.NopLogger{}
	}

	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		cfg:        cfg,
		store:      lineitem.NewStore(),
		exclusions: offer.NewExclusionSet(),
		date:       cfg.Date,
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan Event, cfg.EventBuffer),
		logger:     cfg.Logger.With(log.String("component", "billing_session")),
	}
	s.lastFingerprint = s.fingerprintLocked()

	return s, nil
}

// AddRow appends a fresh empty row, or returns the existing trailing
// empty row when there is one.
func (s *Session) AddRow() (lineitem.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lineitem.LineItem{}, billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	row := s.store.AddRow()
	s.markDirtyLocked()

	return row, nil
}

// UpdateRow applies a raw field edit to a row. Out-of-range quantity or
// price values leave the row unchanged.
func (s *Session) UpdateRow(id string, field lineitem.Field, value string) (lineitem.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lineitem.LineItem{}, billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	item, err := s.store.UpdateField(id, field, value)
	if err != nil {
		return lineitem.LineItem{}, err
	}

	s.markDirtyLocked()

	return item, nil
}

// SelectProduct resolves a row to the given catalog product, prefilling
// the recommended price (catalog default on lookup failure).
func (s *Session) SelectProduct(ctx context.Context, rowID, productID string) (lineitem.LineItem, error) {
	if s.cfg.Resolver == nil {
		return lineitem.LineItem{}, billing.NewDomainError(billing.ErrorResolutionFailed, "resolver", "no catalog resolver configured")
	}

	product, ok := s.cfg.Resolver.ByID(productID)
	if !ok {
		return lineitem.LineItem{}, billing.NewDomainError(billing.ErrorNotFound, "productId", "product not found")
	}

	// The history lookup happens outside the session lock; it is a
	// network call and must not stall concurrent edits.
	price := s.cfg.Resolver.RecommendedPrice(ctx, product)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lineitem.LineItem{}, billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	item, ok := s.store.Select(rowID, product.ID, product.Name, price)
	if !ok {
		return lineitem.LineItem{}, billing.NewDomainError(billing.ErrorNotFound, "id", "line item not found")
	}

	s.markDirtyLocked()

	return item, nil
}

// RemoveRow deletes a row. A calculator-owned row linked to an offer is
// removed through the offer-exclusion cascade instead, so the offer
// stays off on subsequent recalculations.
func (s *Session) RemoveRow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	if item, ok := s.store.Get(id); ok && item.OfferID != "" {
		s.excludeOfferLocked(item.OfferID)
		return nil
	}

	if !s.store.RemoveRow(id) {
		return billing.NewDomainError(billing.ErrorNotFound, "id", "line item not found")
	}

	s.markDirtyLocked()

	return nil
}

// SetCustomer selects the party for the session.
func (s *Session) SetCustomer(p party.Party) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.customer = &p
	s.markDirtyLocked()
}

// ClearCustomer removes the selected party.
func (s *Session) ClearCustomer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.customer = nil
	s.markDirtyLocked()
}

// SetDate changes the transaction date.
func (s *Session) SetDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.date = date
	s.markDirtyLocked()
}

// SetPaidAmount records the amount paid. Does not affect calculation.
func (s *Session) SetPaidAmount(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paidAmount = amount
}

// SetPaymentMode records the payment mode. Does not affect calculation.
func (s *Session) SetPaymentMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMode = mode
}

// SetNotes records free-form notes. Does not affect calculation.
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

// State is a point-in-time snapshot of the session for rendering.
type State struct {
	Items           []lineitem.LineItem `json:"items"`
	Totals          calc.Totals         `json:"totals"`
	AppliedOffers   []offer.Applied     `json:"appliedOffers"`
	AvailableOffers []offer.Available   `json:"availableOffers"`
	ExcludedOffers  []string            `json:"excludedOffers"`
	Customer        *party.Party        `json:"customer,omitempty"`
	Date            string              `json:"date"`
	Type            trading.Type        `json:"type"`
	PaidAmount      decimal.Decimal     `json:"paidAmount"`
	EditMode        bool                `json:"editMode"`
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var customer *party.Party
	if s.customer != nil {
		c := *s.customer
		customer = &c
	}

	return State{
		Items:           s.store.Items(),
		Totals:          s.totals,
		AppliedOffers:   append([]offer.Applied(nil), s.applied...),
		AvailableOffers: append([]offer.Available(nil), s.available...),
		ExcludedOffers:  s.exclusions.IDs(),
		Customer:        customer,
		Date:            s.date,
		Type:            s.cfg.Type,
		PaidAmount:      s.paidAmount,
		EditMode:        s.editMode,
	}
}

// Close ends the editing session: the pending debounce timer is aborted
// and any in-flight calculator response is fenced out. The event channel
// stays open but receives nothing further.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.pendingRequestID = ""

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.cancel()
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
