package agree

import (
	"testing"

	"github.com/shardsign/tss-core/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeTransport is a channel-backed Transport connecting two goroutines
// running opposite sides of an agreement primitive.
type pipeTransport struct {
	out chan<- []byte
	in  <-chan []byte
}

func (p *pipeTransport) Send(data []byte) error {
	cp := append([]byte{}, data...)
	p.out <- cp
	return nil
}

func (p *pipeTransport) Receive() ([]byte, error) {
	return <-p.in, nil
}

func newPipe() (Transport, Transport) {
	a, b := make(chan []byte, 4), make(chan []byte, 4)
	return &pipeTransport{out: a, in: b}, &pipeTransport{out: b, in: a}
}

func TestRandomAgrees(t *testing.T) {
	t1, t2 := newPipe()

	var r1, r2 []byte
	var err1, err2 error
	done := make(chan struct{})
	go func() {
		defer close(done)
		r1, err1 = RandomP1(t1, hash.New(), 256)
	}()
	r2, err2 = RandomP2(t2, hash.New(), 256)
	<-done

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2)
	assert.Len(t, r1, 32)
}

func TestWeakRandomAgrees(t *testing.T) {
	t1, t2 := newPipe()

	var r1, r2 []byte
	var err1, err2 error
	done := make(chan struct{})
	go func() {
		defer close(done)
		r1, err1 = WeakRandomFirst(t1, 256)
	}()
	r2, err2 = WeakRandomSecond(t2, 256)
	<-done

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2)
	assert.Len(t, r1, 32)
}
