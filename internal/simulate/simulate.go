// Package simulate drives a set of in-process protocol.MultiHandlers
// to completion, the way a test exercising a multi-party protocol
// needs to without a real network. Modeled on the teacher's implicit
// test pattern of manually shuttling protocol.Message values between
// handlers, generalized into one reusable driver so every protocol's
// tests can share it instead of reimplementing the loop.
package simulate

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shardsign/tss-core/pkg/party"
	"github.com/shardsign/tss-core/pkg/protocol"
)

// Run creates one handler per entry in starts, then alternates
// rounds — process, route, deliver — until every handler has produced
// a result or an error, up to maxRounds. Each round's per-party
// ProcessRound call runs concurrently via an errgroup, since no party
// can affect another's round computation before messages are routed.
func Run(starts map[party.ID]protocol.StartFunc, sessionID []byte, maxRounds int) (map[party.ID]*protocol.MultiHandler, error) {
	handlers := make(map[party.ID]*protocol.MultiHandler, len(starts))
	for id, start := range starts {
		h, err := protocol.NewMultiHandler(start, sessionID)
		if err != nil {
			return nil, fmt.Errorf("simulate: party %v: %w", id, err)
		}
		handlers[id] = h
	}

	for round := 0; round < maxRounds; round++ {
		var g errgroup.Group
		var mu sync.Mutex
		outbox := make([]*protocol.Message, 0, len(handlers)*2)
		for _, h := range handlers {
			h := h
			if _, err := h.Result(); err == nil {
				continue
			}
			g.Go(func() error {
				out := h.ProcessRound()
				mu.Lock()
				outbox = append(outbox, out...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return handlers, err
		}

		if len(outbox) == 0 {
			break
		}
		for _, msg := range outbox {
			for _, h := range handlers {
				if h.CanAccept(msg) {
					h.Accept(msg)
				}
			}
		}

		if allDone(handlers) {
			return handlers, nil
		}
	}

	return handlers, checkErrors(handlers)
}

func allDone(handlers map[party.ID]*protocol.MultiHandler) bool {
	for _, h := range handlers {
		if _, err := h.Result(); err != nil {
			return false
		}
	}
	return true
}

func checkErrors(handlers map[party.ID]*protocol.MultiHandler) error {
	for id, h := range handlers {
		if _, err := h.Result(); err != nil {
			return fmt.Errorf("simulate: party %v did not finish: %w", id, err)
		}
	}
	return nil
}
