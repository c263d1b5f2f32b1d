package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmon/pkg/circuitbreaker"
)

func testBreaker() *circuitbreaker.Wrapper {
	return circuitbreaker.NewWrapper(circuitbreaker.Config{
		Name:         "test",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	})
}

func TestBreakerSource_PassesThroughSuccess(t *testing.T) {
	inner := &scriptedSource{}
	src := WithBreaker(inner, testBreaker())

	body, err := src.Fetch(context.Background(), "g", "")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), body)
}

func TestBreakerSource_OpenCircuitIsTransient(t *testing.T) {
	fail := func() error { return newFetchError(KindConnection, "http://x", fmt.Errorf("refused")) }
	inner := &scriptedSource{errs: []error{fail(), fail(), fail(), fail()}}
	src := WithBreaker(inner, testBreaker())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		src.Fetch(ctx, "g", "")
	}

	callsBefore := inner.calls
	_, err := src.Fetch(ctx, "g", "")
	require.Error(t, err)
	assert.Equal(t, KindConnection, KindOf(err), "open circuit reads as a connection failure")
	assert.Equal(t, callsBefore, inner.calls, "open circuit does not hit the backend")
}
