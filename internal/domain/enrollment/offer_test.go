package enrollment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	vo "coursepay/internal/domain/enrollment/valueobjects"
)

func TestOffer_EnrolmentWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fixed period", func(t *testing.T) {
		o := &Offer{Period: 30 * 24 * time.Hour, Cost: vo.NewMoney(500000, "NGN")}

		start, end := o.EnrolmentWindow(now)

		assert.Equal(t, now, start)
		assert.Equal(t, now.Add(30*24*time.Hour), end)
	})

	t.Run("indefinite period", func(t *testing.T) {
		o := &Offer{Cost: vo.NewMoney(500000, "NGN")}

		start, end := o.EnrolmentWindow(now)

		assert.Equal(t, now, start, "start records when the grant was made even without an expiry")
		assert.True(t, end.IsZero())
	})
}
