package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/common/auth"
	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

var (
	testNow  = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	pickupCP = booking.NewResolvedLocation("Connaught Place, New Delhi", 28.6315, 77.2167)
	dropT3   = booking.NewResolvedLocation("IGI Airport Terminal 3", 28.5562, 77.1000)
	quote232 = booking.FareQuote{
		TripType:      booking.TripOneWay,
		VehicleType:   booking.VehicleSedan,
		DistanceKm:    12,
		BaseFare:      100,
		PricePerKm:    11,
		EstimatedFare: 232,
	}
)

type fakeFares struct {
	mu       sync.Mutex
	calls    int
	lastReq  booking.FareRequest
	quote    *booking.FareQuote
	err      error
	duringFn func()
}

func (f *fakeFares) CalculateFare(ctx context.Context, req booking.FareRequest) (*booking.FareQuote, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	during := f.duringFn
	f.mu.Unlock()
	if during != nil {
		during()
	}
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	return &q, nil
}

type fakeBookings struct {
	calls     int
	lastToken string
	lastReq   booking.BookingRequest
	err       error
}

func (f *fakeBookings) CreateBooking(ctx context.Context, token string, req booking.BookingRequest) (*booking.BookingConfirmation, error) {
	f.calls++
	f.lastToken = token
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &booking.BookingConfirmation{
		BookingID:     "bk-1001",
		OTP:           "4821",
		EstimatedFare: req.EstimatedFare,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
		VehicleType:   req.VehicleType,
	}, nil
}

type recordingPublisher struct {
	fares    []booking.FareQuote
	bookings []booking.BookingConfirmation
}

func (p *recordingPublisher) PublishFareQuoted(_ context.Context, _ string, q booking.FareQuote) error {
	p.fares = append(p.fares, q)
	return nil
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, _ string, c booking.BookingConfirmation) error {
	p.bookings = append(p.bookings, c)
	return nil
}

type wizardFixture struct {
	svc       *WizardService
	fares     *fakeFares
	bookings  *fakeBookings
	tracking  *TrackingService
	publisher *recordingPublisher
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()
	f := &wizardFixture{
		fares:     &fakeFares{quote: &quote232},
		bookings:  &fakeBookings{},
		tracking:  NewTrackingService(nil, zap.NewNop()),
		publisher: &recordingPublisher{},
	}
	f.tracking.now = func() time.Time { return testNow }
	f.svc = NewWizardService("sess-1", f.fares, f.bookings, f.tracking, f.publisher, time.UTC, zap.NewNop())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *wizardFixture) toVehicleStep(t *testing.T) {
	t.Helper()
	for _, ev := range []booking.Event{
		booking.SetPickup{Location: pickupCP},
		booking.SetDrop{Location: dropT3},
		booking.Advance{},
		booking.SelectVehicle{VehicleType: booking.VehicleSedan},
	} {
		_, err := f.svc.Dispatch(ev)
		require.NoError(t, err)
	}
}

func (f *wizardFixture) toConfirmStep(t *testing.T) {
	t.Helper()
	f.toVehicleStep(t)
	_, err := f.svc.CalculateFare(context.Background())
	require.NoError(t, err)
}

func rider() *Identity {
	return &Identity{UserID: "rider-7", Role: auth.RoleRider, Token: "tok", ExpiresAt: testNow.Add(time.Hour)}
}

func TestWizardService_CalculateFareAdvances(t *testing.T) {
	f := newWizardFixture(t)
	f.toVehicleStep(t)

	view, err := f.svc.CalculateFare(context.Background())
	require.NoError(t, err)

	assert.Equal(t, booking.StepConfirm, view.Step)
	require.NotNil(t, view.Fare)
	assert.Equal(t, 232.0, view.Fare.EstimatedFare)
	assert.False(t, view.CalculatingFare)
	assert.Equal(t, booking.VehicleSedan, f.fares.lastReq.VehicleType)
	assert.Len(t, f.publisher.fares, 1)
}

func TestWizardService_CalculateFareRejectsUnresolvedPickup(t *testing.T) {
	f := newWizardFixture(t)
	f.toVehicleStep(t)

	_, err := f.svc.Dispatch(booking.SetPickup{Location: booking.TextLocation("Connaught")})
	require.NoError(t, err)

	_, err = f.svc.CalculateFare(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Zero(t, f.fares.calls)
}

func TestWizardService_CalculateFareFailureKeepsState(t *testing.T) {
	f := newWizardFixture(t)
	f.toVehicleStep(t)
	f.fares.err = domain.NewNetworkError("fare service unavailable", nil)

	view, err := f.svc.CalculateFare(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeNetwork))
	assert.Equal(t, booking.StepVehicle, view.Step)
	assert.Nil(t, view.Fare)
	assert.False(t, view.CalculatingFare)
	assert.Empty(t, f.publisher.fares)
}

func TestWizardService_CalculateFareDropsStaleReply(t *testing.T) {
	f := newWizardFixture(t)
	f.toVehicleStep(t)

	f.fares.duringFn = func() {
		_, err := f.svc.Dispatch(booking.SelectVehicle{VehicleType: booking.VehicleSUV})
		require.NoError(t, err)
	}

	view, err := f.svc.CalculateFare(context.Background())
	assert.ErrorIs(t, err, booking.ErrStaleFare)
	assert.Nil(t, view.Fare)
	assert.Equal(t, booking.StepVehicle, view.Step)
	require.NotNil(t, view.Vehicle)
	assert.Equal(t, booking.VehicleSUV, view.Vehicle.ID)
}

func TestWizardService_CalculateFareSingleFlight(t *testing.T) {
	f := newWizardFixture(t)
	f.toVehicleStep(t)

	var nestedErr error
	var nestedView WizardView
	f.fares.duringFn = func() {
		nestedView, nestedErr = f.svc.CalculateFare(context.Background())
	}

	_, err := f.svc.CalculateFare(context.Background())
	require.NoError(t, err)
	assert.True(t, domain.IsCode(nestedErr, domain.CodeValidation))
	assert.True(t, nestedView.CalculatingFare)
	assert.Equal(t, 1, f.fares.calls)
}

func TestWizardService_ConfirmWithoutFareMakesNoCall(t *testing.T) {
	f := newWizardFixture(t)
	f.toVehicleStep(t)

	_, err := f.svc.ConfirmBooking(context.Background(), rider())
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Zero(t, f.bookings.calls)
}

func TestWizardService_ConfirmPastScheduleMakesNoCall(t *testing.T) {
	f := newWizardFixture(t)
	f.toConfirmStep(t)
	_, err := f.svc.Dispatch(booking.SetSchedule{Schedule: booking.BookingSchedule{
		Type: booking.BookingScheduled, Date: "2026-03-10", Time: "09:00",
	}})
	require.NoError(t, err)

	_, err = f.svc.ConfirmBooking(context.Background(), rider())
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Zero(t, f.bookings.calls)
	assert.Equal(t, booking.StepConfirm, f.svc.View().Step)
}

func TestWizardService_ConfirmWithoutIdentityResetsWizard(t *testing.T) {
	f := newWizardFixture(t)
	f.toConfirmStep(t)

	expired := rider()
	expired.ExpiresAt = testNow.Add(-time.Minute)

	for _, id := range []*Identity{nil, expired} {
		_, err := f.svc.ConfirmBooking(context.Background(), id)
		assert.True(t, domain.IsCode(err, domain.CodeAuthenticationRequired))
	}
	assert.Zero(t, f.bookings.calls)

	view := f.svc.View()
	assert.Equal(t, booking.StepLocations, view.Step)
	assert.Nil(t, view.Pickup)
	assert.Nil(t, view.Fare)
}

func TestWizardService_ConfirmSuccess(t *testing.T) {
	f := newWizardFixture(t)
	f.toConfirmStep(t)
	_, err := f.svc.Dispatch(booking.SetPaymentMethod{Method: booking.PaymentOnline})
	require.NoError(t, err)

	tracked, err := f.svc.ConfirmBooking(context.Background(), rider())
	require.NoError(t, err)
	require.NotNil(t, tracked)

	assert.Equal(t, "bk-1001", tracked.BookingID)
	assert.Equal(t, "4821", tracked.OTP)
	assert.Equal(t, 232.0, tracked.EstimatedFare)

	assert.Equal(t, "tok", f.bookings.lastToken)
	assert.Equal(t, booking.PaymentOnline, f.bookings.lastReq.PaymentMethod)
	assert.Equal(t, booking.BookingNow, f.bookings.lastReq.BookingType)
	assert.Equal(t, 12.0, f.bookings.lastReq.DistanceKm)

	assert.Equal(t, booking.StepLocations, f.svc.View().Step, "wizard starts over after booking")
	assert.Len(t, f.publisher.bookings, 1)

	got, err := f.tracking.Get("bk-1001", rider())
	require.NoError(t, err)
	assert.Equal(t, "bk-1001", got.BookingID)
}

func TestWizardService_ConfirmFailureStaysOnConfirm(t *testing.T) {
	f := newWizardFixture(t)
	f.toConfirmStep(t)
	f.bookings.err = domain.NewNetworkError("booking service unavailable", nil)

	_, err := f.svc.ConfirmBooking(context.Background(), rider())
	assert.True(t, domain.IsCode(err, domain.CodeNetwork))

	view := f.svc.View()
	assert.Equal(t, booking.StepConfirm, view.Step)
	assert.NotNil(t, view.Fare)
	assert.False(t, view.ConfirmingRide)

	f.bookings.err = nil
	_, err = f.svc.ConfirmBooking(context.Background(), rider())
	require.NoError(t, err)
	assert.Equal(t, 2, f.bookings.calls)
}

func TestWizardService_DispatchErrorKeepsState(t *testing.T) {
	f := newWizardFixture(t)
	before := f.svc.View()

	view, err := f.svc.Dispatch(booking.Advance{})
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
	assert.Equal(t, before, view)
}

func TestWizardService_ViewCountUnitFollowsTripType(t *testing.T) {
	f := newWizardFixture(t)
	assert.Equal(t, "days", f.svc.View().CountUnit)

	view, err := f.svc.Dispatch(booking.ChangeTripType{TripType: booking.TripLocalRental})
	require.NoError(t, err)
	assert.Equal(t, "hours", view.CountUnit)
	assert.Equal(t, 2, view.Trip.Days)
}
