package flow

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	flowRepo "staybridge/database/repository/flow"
	"staybridge/models"
	"staybridge/supplier"
	"staybridge/supplier/mappers"
	"staybridge/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- in-memory repositories ---

type memFlowRepo struct {
	mu    sync.Mutex
	flows map[string]models.Flow
}

func newMemFlowRepo() *memFlowRepo {
	return &memFlowRepo{flows: make(map[string]models.Flow)}
}

func (r *memFlowRepo) Create(f *models.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[f.ID] = *f
	return nil
}

func (r *memFlowRepo) Update(f *models.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[f.ID] = *f
	return nil
}

func (r *memFlowRepo) UpdateWithStatus(f *models.Flow, expected string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.flows[f.ID]
	if !ok || stored.Status != expected {
		return flowRepo.ErrStatusConflict
	}
	r.flows[f.ID] = *f
	return nil
}

func (r *memFlowRepo) GetByID(id string) (*models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	if !ok {
		return nil, nil
	}
	cp := f
	return &cp, nil
}

func (r *memFlowRepo) GetByUser(userID string, limit int64) ([]models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Flow
	for _, f := range r.flows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

type memStepRepo struct {
	mu      sync.Mutex
	entries []models.Step
}

func (r *memStepRepo) Append(s *models.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *s)
	return nil
}

func (r *memStepRepo) FindReplay(flowID, step, key string) (*models.Step, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		e := r.entries[i]
		if e.FlowID == flowID && e.Step == step && e.IdempotencyKey == key && e.Success {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *memStepRepo) ListByFlow(flowID string) ([]models.Step, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Step
	for _, e := range r.entries {
		if e.FlowID == flowID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memStepRepo) byStep(flowID, step string) []models.Step {
	var out []models.Step
	all, _ := r.ListByFlow(flowID)
	for _, e := range all {
		if e.Step == step {
			out = append(out, e)
		}
	}
	return out
}

// --- fake payment service ---

type fakePayments struct {
	mu       sync.Mutex
	held     float64
	captured []string
	released []float64
}

func (p *fakePayments) Hold(_ context.Context, _, _, _ string, amount float64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = amount
	return "pi_test_1", nil
}

func (p *fakePayments) Capture(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captured = append(p.captured, intentID)
	return nil
}

func (p *fakePayments) Release(_ context.Context, _ string, refundAmount float64, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = append(p.released, refundAmount)
	return "re_test_1", nil
}

// --- scripted supplier ---

var (
	commandPattern = regexp.MustCompile(`command="([a-z]+)"`)
	modePattern    = regexp.MustCompile(`<mode>([a-z]+)</mode>`)
)

type harness struct {
	svc      *DefaultFlowService
	flows    *memFlowRepo
	steps    *memStepRepo
	payments *fakePayments
	srv      *httptest.Server

	mu    sync.Mutex
	calls []string
	// respond maps "command" (or "bookitinerary/<mode>") to a response
	// queue. The head is consumed per call; the last body sticks.
	respond map[string][]string
}

func (h *harness) commandCalls(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.calls {
		if c == name || strings.HasPrefix(c, name+"/") {
			n++
		}
	}
	return n
}

func (h *harness) set(key string, bodies ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.respond[key] = bodies
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		flows:    newMemFlowRepo(),
		steps:    &memStepRepo{},
		payments: &fakePayments{},
		respond:  make(map[string][]string),
	}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m := commandPattern.FindStringSubmatch(string(body))
		if m == nil {
			t.Errorf("request carried no command: %s", body)
			io.WriteString(w, supplierFailure(4))
			return
		}
		key := m[1]
		if key == "bookitinerary" {
			mode := "no"
			if mm := modePattern.FindStringSubmatch(string(body)); mm != nil {
				mode = mm[1]
			}
			key = key + "/" + mode
		}
		h.mu.Lock()
		h.calls = append(h.calls, key)
		queue := h.respond[key]
		var resp string
		switch len(queue) {
		case 0:
			h.mu.Unlock()
			t.Errorf("no scripted response for %s", key)
			io.WriteString(w, supplierFailure(4))
			return
		case 1:
			resp = queue[0]
		default:
			resp = queue[0]
			h.respond[key] = queue[1:]
		}
		h.mu.Unlock()
		io.WriteString(w, resp)
	}))
	t.Cleanup(h.srv.Close)

	client := supplier.NewClient(supplier.Config{
		Endpoint:   h.srv.URL,
		Username:   "agency",
		Password:   "secret",
		RatePerSec: 1000,
	}, zap.NewNop())

	h.svc = &DefaultFlowService{
		Flows:    h.flows,
		Steps:    h.steps,
		Supplier: client,
		Tokens:   utils.NewOfferTokenCodec("test-secret", 15*time.Minute),
		Payments: h.payments,
		Logger:   zap.NewNop(),
		Retry:    RetryPolicy{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Attempts: 2},
	}
	return h
}

const searchOK = `<result tID="TX-1" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <hotels count="1">
    <hotel hotelid="15546">
      <hotelName>Imperial Palace</hotelName>
      <rooms>
        <room runno="0">
          <roomType code="DBL-STD">
            <name>Standard Double</name>
            <rateBases>
              <rateBasis id="1" description="Room Only">
                <total>250.00</total>
                <currencyShort>USD</currencyShort>
                <allocationDetails>alloc-search</allocationDetails>
                <rateType>refundable</rateType>
              </rateBasis>
            </rateBases>
          </roomType>
        </room>
      </rooms>
    </hotel>
  </hotels>
</result>`

const roomRatesOK = `<result tID="TX-2" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <rooms>
    <room runno="0">
      <roomType code="DBL-STD">
        <rateBases>
          <rateBasis id="1">
            <total>250.00</total>
            <currencyShort>USD</currencyShort>
            <allocationDetails>alloc-blocked</allocationDetails>
          </rateBasis>
        </rateBases>
      </roomType>
    </room>
  </rooms>
</result>`

const saveOK = `<result tID="TX-3" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <bookingCode>ITN-881</bookingCode>
  <servicesBooked><service><referenceNumber>SRV-17</referenceNumber></service></servicesBooked>
</result>`

const priceOK = `<result tID="TX-4" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <pricing><total>250.00</total><currency>USD</currency></pricing>
  <allocationDetails>alloc-priced</allocationDetails>
</result>`

const preauthOK = `<result tID="TX-5" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <pricing><total>250.00</total><currency>USD</currency></pricing>
  <authorization><orderCode>ORD-5</orderCode><authorisationId>AUTH-9</authorisationId></authorization>
  <allocationDetails>alloc-preauth</allocationDetails>
</result>`

const confirmOK = `<result tID="TX-6" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <pricing><total>250.00</total><currency>USD</currency></pricing>
  <confirmation><bookingCode>BKG-42</bookingCode><referenceNumber>REF-7</referenceNumber></confirmation>
</result>`

func supplierFailure(code int) string {
	return `<result tID="TX-E" elapsedTime="5" date="2025-11-20 10:00:00">
  <successful>FALSE</successful>
  <error><code>` + strconv.Itoa(code) + `</code><shortDetails>failed</shortDetails><details>scripted failure</details></error>
</result>`
}

var guest = models.Actor{UserID: "user-1", Role: "user"}

func searchContext() models.SearchContext {
	return models.SearchContext{
		HotelID:  15546,
		FromDate: "2025-12-01",
		ToDate:   "2025-12-04",
		Currency: "520",
		Rooms:    []models.RoomRequest{{Adults: 2}},
	}
}

func saveInput() models.SaveBookingInput {
	return models.SaveBookingInput{
		Contact: models.Contact{Email: "guest@example.com", FirstName: "John", LastName: "Doe"},
		Passengers: []models.Passenger{
			{Salutation: "147", FirstName: "John", LastName: "Doe", Leading: true},
			{Salutation: "148", FirstName: "Jane", LastName: "Doe"},
		},
	}
}

// advance drives a fresh flow to the requested status and returns it.
func advance(t *testing.T, h *harness, target string) *models.Flow {
	t.Helper()
	ctx := context.Background()
	h.set("searchhotels", searchOK)

	started, err := h.svc.Start(ctx, guest, searchContext())
	require.NoError(t, err)
	require.NotEmpty(t, started.Offers)
	f := started.Flow
	if target == models.FlowStarted {
		return f
	}

	f, err = h.svc.Select(ctx, guest, f.ID, started.Offers[0].Token)
	require.NoError(t, err)
	if target == models.FlowOfferSelected {
		return f
	}

	h.set("getroomrates", roomRatesOK)
	f, err = h.svc.Block(ctx, guest, f.ID, "")
	require.NoError(t, err)
	if target == models.FlowBlocked {
		return f
	}

	h.set("savebooking", saveOK)
	f, err = h.svc.Save(ctx, guest, f.ID, saveInput(), "")
	require.NoError(t, err)
	if target == models.FlowSaved {
		return f
	}

	h.set("bookitinerary/no", priceOK)
	f, err = h.svc.Price(ctx, guest, f.ID, "", "")
	require.NoError(t, err)
	if target == models.FlowPriced {
		return f
	}

	h.set("bookitinerary/preauth", preauthOK)
	f, err = h.svc.Preauth(ctx, guest, f.ID, "pm_card", "")
	require.NoError(t, err)
	if target == models.FlowPreauthed {
		return f
	}

	h.set("bookitinerary/yes", confirmOK)
	f, err = h.svc.Confirm(ctx, guest, f.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.FlowConfirmed, f.Status)
	return f
}

func TestFullBookingFlow(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowConfirmed)

	assert.Equal(t, "ITN-881", f.ItineraryBookingCode)
	assert.Equal(t, "SRV-17", f.ServiceReferenceNumber)
	assert.Equal(t, "ORD-5", f.SupplierOrderCode)
	assert.Equal(t, "AUTH-9", f.SupplierAuthorisationID)
	assert.Equal(t, "BKG-42", f.FinalBookingCode)
	assert.Equal(t, "REF-7", f.BookingReferenceNumber)

	// Snapshots are independent per phase.
	require.NotNil(t, f.Priced)
	require.NotNil(t, f.Preauthorized)
	require.NotNil(t, f.Confirmed)
	assert.Equal(t, 250.0, f.PaidAmount())

	// Allocation token superseded at every step that returns one.
	assert.Equal(t, "alloc-preauth", f.AllocationCurrent)
	blocks := h.steps.byStep(f.ID, models.StepBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, "alloc-search", blocks[0].AllocationIn)
	assert.Equal(t, "alloc-blocked", blocks[0].AllocationOut)
	prices := h.steps.byStep(f.ID, models.StepPrice)
	require.Len(t, prices, 1)
	assert.Equal(t, "alloc-blocked", prices[0].AllocationIn)
	assert.Equal(t, "alloc-priced", prices[0].AllocationOut)

	// Card hold placed for the priced amount and captured at confirmation.
	assert.Equal(t, 250.0, h.payments.held)
	assert.Equal(t, []string{"pi_test_1"}, h.payments.captured)

	// Ledger bodies never retain the allocation token in the clear.
	for _, e := range blocks {
		assert.NotContains(t, e.RequestBody, "alloc-search")
		assert.NotContains(t, e.ResponseBody, "alloc-blocked")
	}
}

func TestStartNoCandidatesIsNoAvailability(t *testing.T) {
	h := newHarness(t)
	h.set("searchhotels", `<result tID="TX-1" elapsedTime="1" date="d"><successful>TRUE</successful><hotels count="0"></hotels></result>`)

	_, err := h.svc.Start(context.Background(), guest, searchContext())
	var cerr *ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, supplier.KindNoAvailability, cerr.Kind)
	assert.Equal(t, supplier.CodeNoAvailability, cerr.Code)
	assert.False(t, cerr.Retryable)
}

func TestBlockVanishedRateDoesNotAdvance(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowOfferSelected)

	// The supplier answers, but the selected combination is gone.
	h.set("getroomrates", `<result tID="TX-2" elapsedTime="1" date="d"><successful>TRUE</successful><rooms></rooms></result>`)
	_, err := h.svc.Block(context.Background(), guest, f.ID, "")
	var cerr *ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, supplier.KindNoAvailability, cerr.Kind)

	stored, err := h.flows.GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FlowOfferSelected, stored.Status)

	// The failed attempt still left a ledger entry.
	blocks := h.steps.byStep(f.ID, models.StepBlock)
	require.Len(t, blocks, 1)
	assert.False(t, blocks[0].Success)
	assert.Equal(t, supplier.KindNoAvailability, blocks[0].ErrorKind)
}

func TestIdempotentReplaySkipsSupplier(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowBlocked)

	h.set("savebooking", saveOK)
	first, err := h.svc.Save(context.Background(), guest, f.ID, saveInput(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, models.FlowSaved, first.Status)

	again, err := h.svc.Save(context.Background(), guest, f.ID, saveInput(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, models.FlowSaved, again.Status)
	assert.Equal(t, first.ItineraryBookingCode, again.ItineraryBookingCode)
	assert.Equal(t, 1, h.commandCalls("savebooking"))
}

func TestRetryableFailureRetriedWithinTransition(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowBlocked)

	// First attempt fails with a retryable code, the loop re-sends.
	h.set("savebooking", supplierFailure(41), saveOK)

	saved, err := h.svc.Save(context.Background(), guest, f.ID, saveInput(), "")
	require.NoError(t, err)
	assert.Equal(t, models.FlowSaved, saved.Status)
	assert.Equal(t, 2, h.commandCalls("savebooking"))
}

func TestNonRetryableFailureFailsFast(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowBlocked)

	h.set("savebooking", supplierFailure(14))
	_, err := h.svc.Save(context.Background(), guest, f.ID, saveInput(), "")
	var cerr *ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, supplier.KindRateChanged, cerr.Kind)
	assert.False(t, cerr.Retryable)
	assert.Equal(t, 1, h.commandCalls("savebooking"))

	stored, _ := h.flows.GetByID(f.ID)
	assert.Equal(t, models.FlowBlocked, stored.Status)
}

func TestConfirmNonRetryableFailureSinksFlow(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowPreauthed)

	h.set("bookitinerary/yes", supplierFailure(18))
	_, err := h.svc.Confirm(context.Background(), guest, f.ID, "")
	var cerr *ClassifiedError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, supplier.KindBookingFailed, cerr.Kind)

	stored, _ := h.flows.GetByID(f.ID)
	assert.Equal(t, models.FlowFailed, stored.Status)
	assert.Equal(t, supplier.KindBookingFailed, stored.FailureKey)
	assert.True(t, stored.Terminal())
}

func TestOutOfOrderTransitionRejected(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowStarted)

	var serr *StateError
	_, err := h.svc.Block(context.Background(), guest, f.ID, "")
	assert.ErrorAs(t, err, &serr)
	_, err = h.svc.Price(context.Background(), guest, f.ID, "", "")
	assert.ErrorAs(t, err, &serr)
	_, err = h.svc.Confirm(context.Background(), guest, f.ID, "")
	assert.ErrorAs(t, err, &serr)
}

func TestSelectForeignTokenRejected(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowStarted)

	foreign, err := h.svc.Tokens.Sign(models.OfferPayload{
		HotelID: 999, FromDate: "2025-12-01", ToDate: "2025-12-04",
		RoomTypeCode: "DBL-STD", RateBasis: "1", Allocation: "alloc-x",
	})
	require.NoError(t, err)

	var serr *StateError
	_, err = h.svc.Select(context.Background(), guest, f.ID, foreign)
	assert.ErrorAs(t, err, &serr)

	tampered := utils.NewOfferTokenCodec("other-secret", time.Minute)
	badToken, err := tampered.Sign(models.OfferPayload{HotelID: 15546})
	require.NoError(t, err)
	_, err = h.svc.Select(context.Background(), guest, f.ID, badToken)
	assert.ErrorIs(t, err, utils.ErrOfferTokenInvalid)
}

func TestOwnershipEnforced(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowSaved)

	stranger := models.Actor{UserID: "user-2", Role: "user"}
	var aerr *AccessError
	_, err := h.svc.Get(context.Background(), stranger, f.ID)
	assert.ErrorAs(t, err, &aerr)

	operator := models.Actor{UserID: "ops-1", Role: "operator"}
	got, err := h.svc.Get(context.Background(), operator, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	var nferr *NotFoundError
	_, err = h.svc.Get(context.Background(), guest, "missing")
	assert.ErrorAs(t, err, &nferr)
}

func TestCancelConfirmedBookingArithmetic(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowConfirmed)

	h.set("cancelbooking", `<result tID="TX-7" elapsedTime="1" date="d">
  <successful>TRUE</successful>
  <penaltyApplied>75.00</penaltyApplied>
  <currency>USD</currency>
</result>`)
	quoted, err := h.svc.CancelQuote(context.Background(), guest, f.ID, "trip cancelled", "")
	require.NoError(t, err)
	assert.Equal(t, models.FlowCancelQuoted, quoted.Status)
	require.NotNil(t, quoted.CancelQuote)
	assert.Equal(t, 75.0, quoted.CancelQuote.Penalty)

	h.set("confirmbooking", `<result tID="TX-8" elapsedTime="1" date="d">
  <successful>TRUE</successful>
  <penaltyApplied>75.00</penaltyApplied>
  <currency>USD</currency>
  <bookingStatus>cancelled</bookingStatus>
</result>`)
	cancelled, err := h.svc.Cancel(context.Background(), guest, f.ID, "trip cancelled", "")
	require.NoError(t, err)

	assert.Equal(t, models.FlowCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelResult)
	assert.Equal(t, 75.0, cancelled.CancelResult.Penalty)
	assert.Equal(t, 175.0, cancelled.CancelResult.PaymentBalance)
	assert.Equal(t, "re_test_1", cancelled.CancelResult.RefundID)
	assert.Equal(t, []float64{175}, h.payments.released)
}

func TestCancelPenaltyExceedingPaidClampsToZero(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowConfirmed)

	h.set("cancelbooking", `<result tID="TX-7" elapsedTime="1" date="d">
  <successful>TRUE</successful>
  <penaltyApplied>300.00</penaltyApplied>
  <currency>USD</currency>
</result>`)
	h.set("confirmbooking", `<result tID="TX-8" elapsedTime="1" date="d">
  <successful>TRUE</successful>
  <penaltyApplied>300.00</penaltyApplied>
  <currency>USD</currency>
  <bookingStatus>cancelled</bookingStatus>
</result>`)

	cancelled, err := h.svc.Cancel(context.Background(), guest, f.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 300.0, cancelled.CancelResult.Penalty)
	assert.Equal(t, 0.0, cancelled.CancelResult.PaymentBalance)
}

func TestCancelBeforeConfirmationDeletesItinerary(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowSaved)

	h.set("deleteitinerary", `<result tID="TX-9" elapsedTime="1" date="d"><successful>TRUE</successful></result>`)
	cancelled, err := h.svc.Cancel(context.Background(), guest, f.ID, "changed plans", "")
	require.NoError(t, err)

	assert.Equal(t, models.FlowCancelled, cancelled.Status)
	assert.Equal(t, 0.0, cancelled.CancelResult.Penalty)
	assert.Equal(t, 0.0, cancelled.CancelResult.PaymentBalance)
	assert.Equal(t, 1, h.commandCalls("deleteitinerary"))
	assert.Equal(t, 0, h.commandCalls("cancelbooking"))
}

func TestSelectRepeatIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.set("searchhotels", searchOK)
	started, err := h.svc.Start(context.Background(), guest, searchContext())
	require.NoError(t, err)

	f, err := h.svc.Select(context.Background(), guest, started.Flow.ID, started.Offers[0].Token)
	require.NoError(t, err)
	again, err := h.svc.Select(context.Background(), guest, started.Flow.ID, started.Offers[0].Token)
	require.NoError(t, err)
	assert.Equal(t, f.Status, again.Status)
	assert.Equal(t, f.SelectedOffer.RoomTypeCode, again.SelectedOffer.RoomTypeCode)
}

func TestSaveRejectsRoomCountMismatch(t *testing.T) {
	h := newHarness(t)
	f := advance(t, h, models.FlowBlocked)

	input := saveInput()
	input.Rooms = []models.RoomPassengers{
		{Passengers: []models.Passenger{{FirstName: "John", LastName: "Doe", Leading: true}}},
		{Passengers: []models.Passenger{{FirstName: "Jane", LastName: "Doe", Leading: true}}},
	}
	_, err := h.svc.Save(context.Background(), guest, f.ID, input, "")
	require.Error(t, err)

	var verr *mappers.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rooms", verr.Field)

	// The request never reached the supplier and the flow did not advance.
	assert.Equal(t, 0, h.commandCalls("savebooking"))
	reloaded, err := h.flows.GetByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FlowBlocked, reloaded.Status)
}

func TestDistributePassengers(t *testing.T) {
	rooms := []models.RoomRequest{
		{Adults: 2, ChildrenAges: []int{6}},
		{Adults: 1},
	}
	input := models.SaveBookingInput{
		Passengers: []models.Passenger{
			{FirstName: "John", LastName: "Doe"},
			{FirstName: "Tim", LastName: "Doe", Child: true, Age: 6},
		},
	}
	out := distributePassengers(rooms, input)
	require.Len(t, out, 2)

	// Room 0: one real adult, one placeholder, the real child.
	require.Len(t, out[0], 3)
	assert.Equal(t, "John", out[0][0].FirstName)
	assert.True(t, out[0][0].Leading)
	assert.Equal(t, "TBA", out[0][1].LastName)
	assert.Equal(t, "Tim", out[0][2].FirstName)

	// Room 1: placeholder adult, forced leading.
	require.Len(t, out[1], 1)
	assert.Equal(t, "TBA", out[1][0].LastName)
	assert.True(t, out[1][0].Leading)
}
