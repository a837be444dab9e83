package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabgo/rider-web/internal/common/domain"
)

func TestBookingSchedule_PickupTime(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, ist)

	t.Run("now booking has no pickup time", func(t *testing.T) {
		at, err := BookingSchedule{Type: BookingNow}.PickupTime(now, ist)
		require.NoError(t, err)
		assert.Nil(t, at)
	})

	t.Run("future schedule resolves in location", func(t *testing.T) {
		s := BookingSchedule{Type: BookingScheduled, Date: "2026-03-10", Time: "18:30"}
		at, err := s.PickupTime(now, ist)
		require.NoError(t, err)
		require.NotNil(t, at)
		assert.True(t, at.Equal(time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)))
	})

	invalid := []struct {
		name     string
		schedule BookingSchedule
	}{
		{"missing date", BookingSchedule{Type: BookingScheduled, Time: "18:30"}},
		{"missing time", BookingSchedule{Type: BookingScheduled, Date: "2026-03-10"}},
		{"malformed time", BookingSchedule{Type: BookingScheduled, Date: "2026-03-10", Time: "6pm"}},
		{"in the past", BookingSchedule{Type: BookingScheduled, Date: "2026-03-09", Time: "18:30"}},
		{"exactly now", BookingSchedule{Type: BookingScheduled, Date: "2026-03-10", Time: "09:00"}},
		{"unknown type", BookingSchedule{Type: "later"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			at, err := tt.schedule.PickupTime(now, ist)
			assert.Nil(t, at)
			assert.True(t, domain.IsCode(err, domain.CodeValidation), "got %v", err)
		})
	}
}
