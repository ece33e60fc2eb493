package subscribers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/subscribers"
	"code.trustnet.io/repmarket/types/num"
)

func TestMarketActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("renders pushed events into records", func(t *testing.T) {
		sub := subscribers.NewMarketActivity(ctx, logging.NewTestLogger(), 10, true)

		sub.Push(
			events.NewMarketGraduatedEvent(ctx, 1, "graduator"),
			events.NewFundsWithdrawnEvent(ctx, 1, "graduator", num.NewUint(21666)),
		)

		recs := sub.Recent(0)
		require.Len(t, recs, 2)
		assert.Equal(t, events.MarketGraduatedEvent.String(), recs[0].Type)
		assert.NotEmpty(t, recs[0].TraceID)
		assert.NotEmpty(t, recs[1].Payload)
	})

	t.Run("retains only the newest records", func(t *testing.T) {
		sub := subscribers.NewMarketActivity(ctx, logging.NewTestLogger(), 3, true)

		for i := uint64(1); i <= 5; i++ {
			sub.Push(events.NewMarketGraduatedEvent(ctx, i, "graduator"))
		}

		recs := sub.Recent(0)
		require.Len(t, recs, 3)
		assert.Equal(t, "market 3 graduated by graduator", recs[0].Payload)
		assert.Equal(t, "market 5 graduated by graduator", recs[2].Payload)
	})

	t.Run("recent caps the slice requested", func(t *testing.T) {
		sub := subscribers.NewMarketActivity(ctx, logging.NewTestLogger(), 10, true)
		for i := uint64(1); i <= 4; i++ {
			sub.Push(events.NewMarketGraduatedEvent(ctx, i, "graduator"))
		}

		assert.Len(t, sub.Recent(2), 2)
		assert.Len(t, sub.Recent(100), 4)
	})

	t.Run("acking subscriber reports itself to the broker", func(t *testing.T) {
		sub := subscribers.NewMarketActivity(ctx, logging.NewTestLogger(), 10, true)
		assert.True(t, sub.Ack())
		assert.Nil(t, sub.Types())
	})
}
