package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/catalog"
	"github.com/kiranalabs/lib-billing/billing/lineitem"
	"github.com/kiranalabs/lib-billing/billing/log"
	"github.com/kiranalabs/lib-billing/billing/party"
	"github.com/kiranalabs/lib-billing/billing/session"
	"github.com/kiranalabs/lib-billing/billing/trading"
)

// PartySearcher finds customers/suppliers; satisfied by *party.Client.
type PartySearcher interface {
	Search(ctx context.Context, query string) ([]party.Party, error)
}

// SessionHandler exposes transaction-edit sessions over HTTP. Each
// session lives server-side; the UI shell drives it through these routes.
type SessionHandler struct {
	mu       sync.Mutex
	sessions map[string]*session.Session

	calculator   session.Calculator
	resolver     *catalog.Resolver
	transactions session.TransactionService
	parties      PartySearcher
	debounce     time.Duration
	logger       log.Logger
}

// SessionHandlerConfig wires the handler dependencies.
type SessionHandlerConfig struct {
	Calculator   session.Calculator
	Resolver     *catalog.Resolver
	Transactions session.TransactionService
	Parties      PartySearcher
	// Debounce overrides the session default; zero keeps it.
	Debounce time.Duration
	Logger   log.Logger
}

// NewSessionHandler creates the session API handler.
func NewSessionHandler(cfg SessionHandlerConfig) *SessionHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = &log.NopLogger{}
	}

	return &SessionHandler{
		sessions:     make(map[string]*session.Session),
		calculator:   cfg.Calculator,
		resolver:     cfg.Resolver,
		transactions: cfg.Transactions,
		parties:      cfg.Parties,
		debounce:     cfg.Debounce,
		logger:       logger,
	}
}

// Register mounts the session API routes.
func (h *SessionHandler) Register(app *fiber.App) {
	v1 := app.Group("/v1")

	v1.Post("/sessions", h.createSession)
	v1.Get("/sessions/:id", h.getSession)
	v1.Delete("/sessions/:id", h.closeSession)

	v1.Post("/sessions/:id/rows", h.addRow)
	v1.Patch("/sessions/:id/rows/:rowId", h.updateRow)
	v1.Delete("/sessions/:id/rows/:rowId", h.removeRow)
	v1.Post("/sessions/:id/rows/:rowId/select", h.selectProduct)

	v1.Put("/sessions/:id/customer", h.setCustomer)
	v1.Put("/sessions/:id/date", h.setDate)
	v1.Put("/sessions/:id/payment", h.setPayment)

	v1.Post("/sessions/:id/offers/:offerId/exclude", h.excludeOffer)
	v1.Post("/sessions/:id/offers/:offerId/reinclude", h.reincludeOffer)

	v1.Post("/sessions/:id/save", h.saveSession)

	v1.Get("/products", h.searchProducts)
	v1.Get("/parties", h.searchParties)
}

type createSessionRequest struct {
	Type trading.Type `json:"type"`
	Date string       `json:"date"`
	// Transaction switches the session into edit mode from a persisted
	// record.
	Transaction *trading.Transaction `json:"transaction,omitempty"`
}

type sessionResponse struct {
	ID    string        `json:"id"`
	State session.State `json:"state"`
}

func (h *SessionHandler) createSession(c *fiber.Ctx) error {
	var request createSessionRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequest(c, string(billing.ErrorInvalidInput), "body", "malformed request body")
	}

	s, err := session.New(session.Config{
		Type:         request.Type,
		Date:         request.Date,
		Debounce:     h.debounce,
		Calculator:   h.calculator,
		Resolver:     h.resolver,
		Transactions: h.transactions,
		Logger:       h.logger,
	})
	if err != nil {
		return WriteDomainError(c, err)
	}

	if request.Transaction != nil {
		if err := s.LoadTransaction(*request.Transaction); err != nil {
			s.Close()
			return WriteDomainError(c, err)
		}
	}

	id := uuid.NewString()

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	return Created(c, sessionResponse{ID: id, State: s.Snapshot()})
}

func (h *SessionHandler) getSession(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	return OK(c, sessionResponse{ID: c.Params("id"), State: s.Snapshot()})
}

func (h *SessionHandler) closeSession(c *fiber.Ctx) error {
	id := c.Params("id")

	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	s.Close()

	return NoContent(c)
}

func (h *SessionHandler) addRow(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	row, err := s.AddRow()
	if err != nil {
		return WriteDomainError(c, err)
	}

	return Created(c, row)
}

type updateRowRequest struct {
	Field lineitem.Field `json:"field"`
	Value string         `json:"value"`
}

func (h *SessionHandler) updateRow(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	var request updateRowRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequest(c, string(billing.ErrorInvalidInput), "body", "malformed request body")
	}

	item, err := s.UpdateRow(c.Params("rowId"), request.Field, request.Value)
	if err != nil {
		return WriteDomainError(c, err)
	}

	return OK(c, item)
}

func (h *SessionHandler) removeRow(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	if err := s.RemoveRow(c.Params("rowId")); err != nil {
		return WriteDomainError(c, err)
	}

	return OK(c, s.Snapshot())
}

type selectProductRequest struct {
	ProductID string `json:"productId"`
}

func (h *SessionHandler) selectProduct(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	var request selectProductRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequest(c, string(billing.ErrorInvalidInput), "body", "malformed request body")
	}

	item, err := s.SelectProduct(c.UserContext(), c.Params("rowId"), request.ProductID)
	if err != nil {
		return WriteDomainError(c, err)
	}

	return OK(c, item)
}

type setCustomerRequest struct {
	WalkIn bool   `json:"walkIn"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

func (h *SessionHandler) setCustomer(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	var request setCustomerRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequest(c, string(billing.ErrorInvalidInput), "body", "malformed request body")
	}

	if request.WalkIn {
		s.SetCustomer(party.WalkIn(request.Name))
		return OK(c, s.Snapshot())
	}

	if request.ID == "" {
		return BadRequest(c, string(billing.ErrorInvalidInput), "id", "party id is required")
	}

	s.SetCustomer(party.Party{ID: request.ID, Name: request.Name, Phone: request.Phone})

	return OK(c, s.Snapshot())
}

type setDateRequest struct {
	Date string `json:"date"`
}

func (h *SessionHandler) setDate(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	var request setDateRequest
	if err := c.BodyParser(&request); err != nil || request.Date == "" {
		return BadRequest(c, string(billing.ErrorInvalidInput), "date", "date is required")
	}

	s.SetDate(request.Date)

	return OK(c, s.Snapshot())
}

type setPaymentRequest struct {
	PaidAmount  string `json:"paidAmount"`
	PaymentMode string `json:"paymentMode"`
	Notes       string `json:"notes"`
}

func (h *SessionHandler) setPayment(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	var request setPaymentRequest
	if err := c.BodyParser(&request); err != nil {
		return BadRequest(c, string(billing.ErrorInvalidInput), "body", "malformed request body")
	}

	if request.PaidAmount != "" {
		amount, err := decimal.NewFromString(request.PaidAmount)
		if err != nil {
			return BadRequest(c, string(billing.ErrorInvalidInput), "paidAmount", "paid amount is not a number")
		}

		s.SetPaidAmount(amount)
	}

	if request.PaymentMode != "" {
		s.SetPaymentMode(request.PaymentMode)
	}

	if request.Notes != "" {
		s.SetNotes(request.Notes)
	}

	return OK(c, s.Snapshot())
}

func (h *SessionHandler) excludeOffer(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	if err := s.ExcludeOffer(c.Params("offerId")); err != nil {
		return WriteDomainError(c, err)
	}

	return OK(c, s.Snapshot())
}

func (h *SessionHandler) reincludeOffer(c *fiber.Ctx) error {
	s, ok := h.lookup(c.Params("id"))
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	if err := s.ReincludeOffer(c.Params("offerId")); err != nil {
		return WriteDomainError(c, err)
	}

	return OK(c, s.Snapshot())
}

func (h *SessionHandler) saveSession(c *fiber.Ctx) error {
	id := c.Params("id")

	s, ok := h.lookup(id)
	if !ok {
		return NotFound(c, string(billing.ErrorNotFound), "session not found")
	}

	record, err := s.Submit(c.UserContext())
	if err != nil {
		return WriteDomainError(c, err)
	}

	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()

	return OK(c, record)
}

func (h *SessionHandler) searchProducts(c *fiber.Ctx) error {
	if h.resolver == nil {
		return OK(c, []catalog.Product{})
	}

	return OK(c, h.resolver.Search(c.Query("search")))
}

func (h *SessionHandler) searchParties(c *fiber.Ctx) error {
	if h.parties == nil {
		return OK(c, []party.Party{})
	}

	parties, err := h.parties.Search(c.UserContext(), c.Query("search"))
	if err != nil {
		return WriteDomainError(c, err)
	}

	return OK(c, parties)
}

func (h *SessionHandler) lookup(id string) (*session.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]

	return s, ok
}
