package tour

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestKeyedMutex(t *testing.T) {
	defer goleak.VerifyNone(t)

	k := newKeyedMutex()
	counters := map[string]*int{"a": new(int), "b": new(int)}

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b"} {
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := k.Lock(key)
				defer unlock()
				*counters[key]++
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, 50, *counters["a"])
	assert.Equal(t, 50, *counters["b"])
	assert.Zero(t, k.size())
}
