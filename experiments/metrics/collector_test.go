package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts requests and rounds concurrently", func(t *testing.T) {
		c := NewCollector()
		c.Start(4)

		var wg sync.WaitGroup
		for i := 1; i <= 4; i++ {
			wg.Add(1)
			go func(batch int) {
				defer wg.Done()
				for j := 0; j < batch; j++ {
					c.AddRequest()
				}
				c.AddRound(batch)
			}(i)
		}
		wg.Wait()

		metric := c.Complete()
		require.Equal(t, 4, metric.Workers)
		require.Equal(t, 4, metric.Rounds)
		require.Equal(t, 10, metric.Requests)
		require.Equal(t, 4, metric.MaxBatch)
		require.Equal(t, 2.5, metric.MeanBatch())
		require.Greater(t, metric.Duration.Nanoseconds(), int64(-1))
	})

	t.Run("start resets the counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(2)
		c.AddRequest()
		c.AddRound(1)

		c.Start(3)

		require.Equal(t, SchedulerMetric{Workers: 3}, withoutDuration(c.Complete()))
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(2)
		c.AddRequest()
		c.AddRound(1)

		require.Equal(t, SchedulerMetric{}, c.Complete())
	})

	t.Run("mean batch of an empty run is 0", func(t *testing.T) {
		require.Equal(t, 0.0, SchedulerMetric{}.MeanBatch())
	})
}

func withoutDuration(m SchedulerMetric) SchedulerMetric {
	m.Duration = 0
	return m
}
