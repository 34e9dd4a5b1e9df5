package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

var errNoSuchBooking = errors.New("booking not found")

type fakeCatalog struct {
	show *model.Showtime
}

func (f *fakeCatalog) Showtime(_ context.Context, id uint64) (*model.Showtime, error) {
	if f.show == nil || f.show.ID != id {
		return nil, errors.New("showtime not found")
	}
	cp := *f.show
	return &cp, nil
}

type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	failOn   string // method name that should fail, for error paths
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[string]*model.Booking)}
}

func (f *fakeStore) Create(_ context.Context, b *model.Booking) error {
	if f.failOn == "create" {
		return errors.New("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, b *model.Booking) error {
	if f.failOn == "update" {
		return errors.New("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[b.ID]; !ok {
		return errNoSuchBooking
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, errNoSuchBooking
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakePayments struct {
	verifyOK  bool
	createErr error
	orders    int
}

func (f *fakePayments) CreateOrder(_ context.Context, _ string, _ uint32) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.orders++
	return "order_test", nil
}

func (f *fakePayments) VerifyPayment(_ context.Context, _, _, _ string) (bool, error) {
	return f.verifyOK, nil
}

type fakePublisher struct {
	confirmed []string
}

func (f *fakePublisher) BookingConfirmed(_ context.Context, b *model.Booking) error {
	f.confirmed = append(f.confirmed, b.ID)
	return nil
}

func testShowtime(id uint64) *model.Showtime {
	return &model.Showtime{
		ID:       id,
		MovieID:  1,
		StartsAt: time.Now().UTC().Add(4 * time.Hour),
		Status:   model.ShowtimeScheduled,
		IsActive: true,
	}
}

func sagaLayout(n int) []inventory.Seat {
	seats := make([]inventory.Seat, 0, n)
	for i := 1; i <= n; i++ {
		seats = append(seats, inventory.Seat{
			ID:         uint64(i),
			Row:        "A",
			Number:     uint32(i),
			Class:      inventory.ClassClassic,
			PriceCents: 25000,
		})
	}
	return seats
}

type sagaFixture struct {
	engine   *inventory.Engine
	catalog  *fakeCatalog
	store    *fakeStore
	payments *fakePayments
	pub      *fakePublisher
	co       *Coordinator
}

func newSagaFixture(t *testing.T, holdTTL time.Duration) *sagaFixture {
	t.Helper()
	f := &sagaFixture{
		engine:   inventory.NewEngine(nil),
		catalog:  &fakeCatalog{show: testShowtime(1)},
		store:    newFakeStore(),
		payments: &fakePayments{verifyOK: true},
		pub:      &fakePublisher{},
	}
	require.NoError(t, f.engine.Register(1, sagaLayout(6)))
	f.co = NewCoordinator(f.engine, f.catalog, f.store, f.payments, f.pub, holdTTL)
	return f
}

func (f *sagaFixture) availableSeats(t *testing.T) int {
	t.Helper()
	_, n, err := f.engine.Snapshot(1)
	require.NoError(t, err)
	return n
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	b, err := f.co.Create(ctx, 100, 1, []uint64{1, 2}, Contact{Email: "a@b.c", Phone: "999"})
	require.NoError(t, err)

	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, uint32(50000), b.TotalAmountCents)
	assert.Equal(t, uint32(2500), b.ConvenienceFeeCents)
	assert.Equal(t, uint32(450), b.TaxesCents)
	assert.Equal(t, uint32(52950), b.FinalAmountCents)
	assert.Equal(t, "order_test", b.OrderID)
	assert.Len(t, b.Seats, 2)
	assert.Regexp(t, `^BMS\d{6}[0-9A-Z]{6}$`, b.ID)

	// The seats are held, not booked yet.
	assert.Equal(t, 4, f.availableSeats(t))
	stored, err := f.store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, stored.Status)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	_, err := f.co.Create(ctx, 100, 1, nil, Contact{})
	assert.ErrorIs(t, err, inventory.ErrInvalidSeatSelection)

	_, err = f.co.Create(ctx, 100, 1, []uint64{1, 1}, Contact{})
	assert.ErrorIs(t, err, inventory.ErrInvalidSeatSelection)

	tooMany := make([]uint64, 11)
	for i := range tooMany {
		tooMany[i] = uint64(i + 1)
	}
	_, err = f.co.Create(ctx, 100, 1, tooMany, Contact{})
	assert.ErrorIs(t, err, inventory.ErrInvalidSeatSelection)
}

func TestCreateBookingShowtimeNotBookable(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	f.catalog.show.StartsAt = time.Now().UTC().Add(-time.Hour)

	_, err := f.co.Create(context.Background(), 100, 1, []uint64{1}, Contact{})
	assert.ErrorIs(t, err, ErrShowtimeNotBookable)
	assert.Equal(t, 6, f.availableSeats(t))
}

func TestCreateBookingReleasesHoldsOnUnavailableSeat(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	// Someone else holds seat 2 before our attempt.
	require.NoError(t, f.engine.AttemptHold(1, 2, 999, time.Minute))

	_, err := f.co.Create(ctx, 100, 1, []uint64{1, 2, 3}, Contact{})
	require.ErrorIs(t, err, inventory.ErrSeatUnavailable)
	var ue *inventory.UnavailableSeatsError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []uint64{2}, ue.SeatIDs)

	// Seats 1 and 3 were rolled back; only the foreign hold remains.
	assert.Equal(t, 5, f.availableSeats(t))
}

func TestCreateBookingReleasesHoldsOnPaymentFailure(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	f.payments.createErr = errors.New("gateway down")

	_, err := f.co.Create(context.Background(), 100, 1, []uint64{1, 2}, Contact{})
	require.Error(t, err)
	assert.Equal(t, 6, f.availableSeats(t))
}

func TestCreateBookingReleasesHoldsOnStoreFailure(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	f.store.failOn = "create"

	_, err := f.co.Create(context.Background(), 100, 1, []uint64{1}, Contact{})
	require.Error(t, err)
	assert.Equal(t, 6, f.availableSeats(t))
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	b, err := f.co.Create(ctx, 100, 1, []uint64{1, 2}, Contact{})
	require.NoError(t, err)

	got, err := f.co.ConfirmPayment(ctx, 100, b.ID, "pay_1", "sig")
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, got.Status)
	require.NotNil(t, got.PaymentRef)
	assert.Equal(t, "pay_1", *got.PaymentRef)
	assert.Equal(t, []string{b.ID}, f.pub.confirmed)

	// Seats are sold now; nobody can hold them.
	assert.ErrorIs(t, f.engine.AttemptHold(1, 1, 999, time.Minute), inventory.ErrSeatUnavailable)
}

func TestConfirmPaymentRejectedSignature(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()
	f.payments.verifyOK = false

	b, err := f.co.Create(ctx, 100, 1, []uint64{1}, Contact{})
	require.NoError(t, err)

	_, err = f.co.ConfirmPayment(ctx, 100, b.ID, "pay_1", "bad")
	assert.ErrorIs(t, err, ErrPaymentRejected)

	stored, err := f.store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, stored.Status)
}

func TestConfirmPaymentForeignBooking(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	b, err := f.co.Create(ctx, 100, 1, []uint64{1}, Contact{})
	require.NoError(t, err)

	_, err = f.co.ConfirmPayment(ctx, 200, b.ID, "pay_1", "sig")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmPaymentAfterHoldsExpired(t *testing.T) {
	// A nanosecond TTL makes the holds expire before the confirm.
	f := newSagaFixture(t, time.Nanosecond)
	ctx := context.Background()

	b, err := f.co.Create(ctx, 100, 1, []uint64{1, 2}, Contact{})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = f.co.ConfirmPayment(ctx, 100, b.ID, "pay_1", "sig")
	assert.ErrorIs(t, err, ErrSeatsNoLongerAvailable)

	stored, err := f.store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingFailed, stored.Status)

	// Terminal: a second confirm attempt is rejected outright.
	_, err = f.co.ConfirmPayment(ctx, 100, b.ID, "pay_1", "sig")
	assert.ErrorIs(t, err, ErrBookingNotPending)
}

func TestCancelReleasesSeats(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	b, err := f.co.Create(ctx, 100, 1, []uint64{1, 2}, Contact{})
	require.NoError(t, err)
	assert.Equal(t, 4, f.availableSeats(t))

	got, err := f.co.Cancel(ctx, 100, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
	assert.Equal(t, 6, f.availableSeats(t))

	_, err = f.co.Cancel(ctx, 100, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotPending)
}

func TestGetHidesForeignBookings(t *testing.T) {
	f := newSagaFixture(t, 5*time.Minute)
	ctx := context.Background()

	b, err := f.co.Create(ctx, 100, 1, []uint64{1}, Contact{})
	require.NoError(t, err)

	_, err = f.co.Get(ctx, 200, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.co.Get(ctx, 100, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}
