package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsumerSetup_SurvivesRejoin(t *testing.T) {
	c := &Consumer{ready: make(chan bool)}

	require.NoError(t, c.Setup(nil))

	// rebalance后sarama会在新session上再次调用Setup，不能重复关闭ready
	require.NotPanics(t, func() {
		require.NoError(t, c.Setup(nil))
		require.NoError(t, c.Setup(nil))
	})

	select {
	case <-c.ready:
	default:
		t.Fatal("ready channel should be closed after first Setup")
	}
}
