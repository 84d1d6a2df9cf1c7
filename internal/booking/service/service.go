// Package service hosts booking form sessions and orchestrates their
// round trips to the pricing backend.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleet_console_backend/internal/booking/form"
	"fleet_console_backend/internal/booking/ports"
	"fleet_console_backend/internal/booking/preview"
	"fleet_console_backend/internal/booking/pricing"
	"fleet_console_backend/internal/booking/repository"
	"fleet_console_backend/internal/booking/transport"
	"fleet_console_backend/internal/booking/wizard"
	"fleet_console_backend/internal/events"
	"fleet_console_backend/platform/apperr"
	"fleet_console_backend/platform/logger"
	"fleet_console_backend/platform/money"
	"fleet_console_backend/platform/sanitize"
)

var (
	errSessionNotFound = apperr.NotFound("booking session not found")
	errNotTerminal     = apperr.BadRequest("submit is only available on the pricing step")
	errStepNotReached  = apperr.BadRequest("step has not been reached yet")
	errUnknownFlow     = apperr.Validation("unknown wizard flow")
)

// Options configures session hosting.
type Options struct {
	Flows  wizard.Flows
	Region string
	TTL    time.Duration
	Clock  func() time.Time
}

// Service hosts form sessions in memory. Each session has its own lock;
// backend calls never run while it is held.
type Service struct {
	catalog ports.CatalogReader
	backend ports.PricingBackend
	ledger  repository.Ledger
	bus     events.Bus
	flows   wizard.Flows
	region  string
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

type entry struct {
	mu      sync.Mutex
	session *form.Session
}

// New creates a new booking service.
func New(catalog ports.CatalogReader, backend ports.PricingBackend, ledger repository.Ledger, bus events.Bus, opts Options, log *logger.Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		catalog:  catalog,
		backend:  backend,
		ledger:   ledger,
		bus:      bus,
		flows:    opts.Flows,
		region:   opts.Region,
		ttl:      opts.TTL,
		now:      opts.Clock,
		log:      log,
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Start opens a form session for actor. With a booking id the session
// edits that booking and is prefilled from the booking backend.
func (s *Service) Start(ctx context.Context, actor uuid.UUID, req transport.StartSessionRequest) (form.View, error) {
	name := req.Flow
	if name == "" {
		name = wizard.DefaultFlow
	}
	flow, ok := s.flows.Get(name)
	if !ok {
		return form.View{}, errUnknownFlow
	}

	catalog, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return form.View{}, err
	}

	opts := form.Options{
		ID:     uuid.New(),
		Mode:   form.ModeCreate,
		Actor:  actor,
		Region: s.region,
		Flow:   flow,
		Now:    s.now(),
	}

	var (
		draft    *form.Draft
		discount *pricing.Discount
	)
	if req.BookingID != "" {
		opts.Mode = form.ModeUpdate
		opts.BookingID = req.BookingID

		d, err := s.backend.GetBooking(ctx, req.BookingID)
		if err != nil {
			return form.View{}, err
		}
		draft = &d
		if discount, err = s.resolveDiscount(ctx, d); err != nil {
			return form.View{}, err
		}
	}

	session := form.New(opts, catalog)
	if draft != nil {
		if err := session.ApplyDraft(*draft, discount); err != nil {
			return form.View{}, err
		}
	}

	s.mu.Lock()
	s.sessions[opts.ID] = &entry{session: session}
	s.mu.Unlock()

	s.log.WithContext(ctx).Info("booking session started",
		"session_id", opts.ID, "mode", opts.Mode, "flow", flow.Name, "booking_id", opts.BookingID)
	return session.View(), nil
}

// resolveDiscount looks up the discount a stored booking carries, by id
// when the backend reports one and by code otherwise. A discount that is no
// longer redeemable is dropped rather than failing the prefill.
func (s *Service) resolveDiscount(ctx context.Context, draft form.Draft) (*pricing.Discount, error) {
	var (
		d   pricing.Discount
		err error
	)
	switch {
	case draft.DiscountID != nil:
		d, err = s.catalog.DiscountByID(ctx, *draft.DiscountID)
	case draft.DiscountCode != "":
		d, err = s.catalog.LookupDiscount(ctx, draft.DiscountCode)
	default:
		return nil, nil
	}
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("booking discount no longer available", "code", draft.DiscountCode, "discount_id", draft.DiscountID)
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// Get returns the current view of a session.
func (s *Service) Get(id, actor uuid.UUID) (form.View, error) {
	return s.update(id, actor, func(*form.Session) error { return nil })
}

// Discard drops a session.
func (s *Service) Discard(id, actor uuid.UUID) error {
	e, err := s.acquire(id, actor)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	e.session = nil
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *Service) SetVehicle(id, actor uuid.UUID, req transport.SetVehicleRequest) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetVehicle(req.VehicleID) })
}

func (s *Service) SetDates(id, actor uuid.UUID, req transport.SetDatesRequest) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetDates(req.StartAt, req.EndAt) })
}

func (s *Service) SetPackage(id, actor uuid.UUID, req transport.SetPackageRequest) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetPackage(req.PackageID) })
}

// SetDiscount resolves the code before taking the session lock. An empty
// code clears the discount.
func (s *Service) SetDiscount(ctx context.Context, id, actor uuid.UUID, req transport.SetDiscountRequest) (form.View, error) {
	var discount *pricing.Discount
	if req.Code != "" {
		d, err := s.catalog.LookupDiscount(ctx, req.Code)
		if err != nil {
			return form.View{}, err
		}
		discount = &d
	}
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetDiscount(discount) })
}

func (s *Service) SetCustomer(id, actor uuid.UUID, req transport.SetCustomerRequest) (form.View, error) {
	c := form.Customer{
		Name:  sanitize.Line(req.Name),
		Email: req.Email,
		Phone: req.Phone,
	}
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetCustomer(c) })
}

func (s *Service) SetLogistics(id, actor uuid.UUID, req transport.SetLogisticsRequest) (form.View, error) {
	l := form.Logistics{
		Pickup:  sanitize.Line(req.Pickup),
		Dropoff: sanitize.Line(req.Dropoff),
		Notes:   sanitize.Text(req.Notes),
	}
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetLogistics(l) })
}

func (s *Service) ToggleOffering(id, actor, offeringID uuid.UUID, selected bool) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error { return fs.ToggleOffering(offeringID, selected) })
}

func (s *Service) SetOfferingQuantity(id, actor, offeringID uuid.UUID, quantity int) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error { return fs.SetOfferingQuantity(offeringID, quantity) })
}

// Next advances the wizard. A blocked move is not an error; the view's
// wizard state says why.
func (s *Service) Next(id, actor uuid.UUID) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error {
		fs.Next()
		return nil
	})
}

func (s *Service) Previous(id, actor uuid.UUID) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error {
		fs.Previous()
		return nil
	})
}

func (s *Service) GoTo(id, actor uuid.UUID, step int) (form.View, error) {
	return s.update(id, actor, func(fs *form.Session) error {
		if !fs.GoTo(step) {
			return errStepNotReached
		}
		return nil
	})
}

// Submit runs the terminal action of the pricing step. From Idle it
// requests a preview; from a valid preview it commits. While a request is
// in flight, or after commit, it returns the current view unchanged.
func (s *Service) Submit(ctx context.Context, id, actor uuid.UUID) (form.View, error) {
	e, err := s.acquire(id, actor)
	if err != nil {
		return form.View{}, err
	}
	fs := e.session
	fs.Touch(s.now())

	if !fs.OnTerminalStep() {
		e.mu.Unlock()
		return form.View{}, errNotTerminal
	}

	switch fs.Status() {
	case preview.StatusIdle:
		return s.runPreview(ctx, e)
	case preview.StatusPreviewed:
		return s.runCommit(ctx, e)
	default:
		v := fs.View()
		e.mu.Unlock()
		return v, nil
	}
}

// runPreview is entered with e locked and returns with it unlocked.
func (s *Service) runPreview(ctx context.Context, e *entry) (form.View, error) {
	fs := e.session
	sid := fs.ID().String()

	ticket, req, ok, err := fs.BeginPreview()
	if err != nil || !ok {
		v := fs.View()
		e.mu.Unlock()
		return v, err
	}
	e.mu.Unlock()

	s.log.PreviewEvent(sid, "requested")
	res, callErr := s.backend.Preview(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return form.View{}, errSessionNotFound
	}

	if callErr != nil {
		if !fs.FailPreview(ticket, callErr) {
			s.log.PreviewEvent(sid, "discarded", "error", callErr.Error())
			return fs.View(), nil
		}
		s.log.PreviewEvent(sid, "failed", "error", callErr.Error())
		s.bus.Publish(ctx, events.BookingPreviewFailed{
			BaseEvent: events.NewBaseEvent(),
			SessionID: fs.ID(),
			Reason:    callErr.Error(),
		})
		return form.View{}, callErr
	}

	if !fs.ResolvePreview(ticket, res) {
		s.log.PreviewEvent(sid, "discarded")
		return fs.View(), nil
	}
	if res.Valid {
		s.log.PreviewEvent(sid, "valid", "grand_total", res.Summary.GrandTotal.StringFixed(2))
	} else {
		s.log.PreviewEvent(sid, "invalid", "errors", len(res.Errors))
	}
	return fs.View(), nil
}

// runCommit is entered with e locked and returns with it unlocked. The
// backend call ignores request cancellation so a disconnecting client
// cannot leave the booking in an unknown state.
func (s *Service) runCommit(ctx context.Context, e *entry) (form.View, error) {
	fs := e.session

	ticket, sub, ok, err := fs.BeginCommit()
	if err != nil || !ok {
		v := fs.View()
		e.mu.Unlock()
		return v, err
	}
	e.mu.Unlock()

	commitCtx := context.WithoutCancel(ctx)
	var bookingID string
	var callErr error
	if sub.Mode == form.ModeUpdate {
		bookingID, callErr = s.backend.Update(commitCtx, sub)
	} else {
		bookingID, callErr = s.backend.Create(commitCtx, sub)
	}
	s.log.CommitEvent(sub.SessionID.String(), string(sub.Mode), bookingID, callErr)

	e.mu.Lock()
	if callErr != nil {
		if e.session != nil {
			fs.FailCommit(ticket, callErr)
		}
		e.mu.Unlock()
		return form.View{}, callErr
	}
	fs.ResolveCommit(ticket, bookingID)
	v := fs.View()
	e.mu.Unlock()

	s.recordCommit(commitCtx, sub, bookingID)
	return v, nil
}

// recordCommit writes the ledger entry and announces the booking. The
// booking already exists upstream, so failures here are logged only.
func (s *Service) recordCommit(ctx context.Context, sub form.Submission, bookingID string) {
	sub.BookingID = bookingID
	payload, err := json.Marshal(sub)
	if err != nil {
		s.log.Error("encode booking submission failed", "error", err, "booking_id", bookingID)
	} else {
		_, err = s.ledger.Insert(ctx, repository.Submission{
			SessionID:   sub.SessionID,
			BookingID:   bookingID,
			Mode:        string(sub.Mode),
			SubmittedBy: sub.SubmittedBy,
			VehicleID:   sub.VehicleID,
			PackageID:   sub.PackageID,
			DiscountID:  sub.DiscountID,
			StartAt:     sub.StartAt,
			EndAt:       sub.EndAt,
			GrandTotal:  money.Round2(sub.PricingSummary.GrandTotal),
			Payload:     payload,
		})
		if err != nil {
			s.log.DatabaseError("insert booking submission", err)
		}
	}

	s.bus.Publish(ctx, events.BookingCommitted{
		BaseEvent:     events.NewBaseEvent(),
		SessionID:     sub.SessionID,
		BookingID:     bookingID,
		Mode:          string(sub.Mode),
		SubmittedBy:   sub.SubmittedBy,
		CustomerName:  sub.Customer.Name,
		CustomerEmail: sub.Customer.Email,
		VehicleName:   sub.VehicleName,
		StartAt:       sub.StartAt,
		EndAt:         sub.EndAt,
		GrandTotal:    money.Round2(sub.PricingSummary.GrandTotal).StringFixed(2),
	})
}

// History lists the ledger entries of a booking.
func (s *Service) History(ctx context.Context, bookingID string) (transport.SubmissionListResponse, error) {
	items, err := s.ledger.ListByBooking(ctx, bookingID)
	if err != nil {
		return transport.SubmissionListResponse{}, err
	}
	out := make([]transport.SubmissionResponse, 0, len(items))
	for _, it := range items {
		out = append(out, transport.SubmissionResponse{
			ID:          it.ID,
			SessionID:   it.SessionID,
			BookingID:   it.BookingID,
			Mode:        it.Mode,
			SubmittedBy: it.SubmittedBy,
			GrandTotal:  money.Round2(it.GrandTotal).StringFixed(2),
			StartAt:     it.StartAt,
			EndAt:       it.EndAt,
			CreatedAt:   it.CreatedAt,
		})
	}
	return transport.SubmissionListResponse{Items: out, Total: len(out)}, nil
}

// acquire returns the session entry locked. Sessions belong to the
// operator who started them; others see not found.
func (s *Service) acquire(id, actor uuid.UUID) (*entry, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, errSessionNotFound
	}

	e.mu.Lock()
	if e.session == nil || e.session.Actor() != actor {
		e.mu.Unlock()
		return nil, errSessionNotFound
	}
	return e, nil
}

func (s *Service) update(id, actor uuid.UUID, fn func(*form.Session) error) (form.View, error) {
	e, err := s.acquire(id, actor)
	if err != nil {
		return form.View{}, err
	}
	defer e.mu.Unlock()

	e.session.Touch(s.now())
	if err := fn(e.session); err != nil {
		return form.View{}, err
	}
	return e.session.View(), nil
}

// Sweep evicts sessions idle for longer than the TTL. Sessions busy with a
// request are skipped until the next sweep.
func (s *Service) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.session == nil || e.session.TouchedAt().Before(cutoff) {
			e.session = nil
			delete(s.sessions, id)
			evicted++
		}
		e.mu.Unlock()
	}
	return evicted
}

// RunJanitor sweeps idle sessions until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("booking sessions evicted", "count", n)
			}
		}
	}
}
