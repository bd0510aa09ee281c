package fanout

import (
	"context"
	"errors"
	"sync"
)

// fillPage bounds one store read while replaying or closing a gap.
const fillPage = 100

// Subscription streams one conversation to one viewer.
//
// The viewer sees each sequence number at most once and in increasing order.
// Live events that arrive ahead of the last delivered seq trigger a store read
// for the missing range first; events at or below it are dropped.
type Subscription struct {
	hub            *Hub
	conversationID uint64
	userID         uint64

	in     chan Event
	wake   chan struct{}
	out    chan Event
	cancel context.CancelFunc
	done   chan struct{}

	// owned by the run goroutine
	last   int64
	primed bool
	// behind records an overflow seen before the first event primed last
	behind bool

	errMu sync.Mutex
	err   error
}

// SubscribeConversation attaches userID to a conversation. With since set,
// every message after that seq is replayed from the store before live events;
// without it the stream starts at the next live message.
//
// The subscription is registered before the replay runs, so nothing
// published in between is lost. It ends when ctx is done or Close is called;
// Events is closed afterwards.
func (h *Hub) SubscribeConversation(ctx context.Context, conversationID, userID uint64, since *int64) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		hub:            h,
		conversationID: conversationID,
		userID:         userID,
		in:             make(chan Event, h.buffer),
		wake:           make(chan struct{}, 1),
		out:            make(chan Event),
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	if since != nil {
		s.last = *since
		s.primed = true
	}
	h.addConversation(s)
	go s.run(ctx)
	return s
}

// Events yields messages in sequence order.
func (s *Subscription) Events() <-chan Event { return s.out }

// LastSeq is the highest sequence number handed to Events so far. Only
// meaningful after Events has been drained or closed.
func (s *Subscription) LastSeq() int64 {
	<-s.done
	return s.last
}

// Err returns the last store or deadline error seen, if any.
func (s *Subscription) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) offer(ev Event) {
	select {
	case s.in <- ev:
	default:
		// the store has it; the run loop reads it back
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.out)
	defer s.hub.removeConversation(s)

	if s.primed && !s.fill(ctx, 0) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			if !s.primed {
				s.behind = true
				continue
			}
			if !s.fill(ctx, 0) {
				return
			}
		case ev := <-s.in:
			if !s.handle(ctx, ev) {
				return
			}
			if s.behind && s.primed {
				s.behind = false
				if !s.fill(ctx, 0) {
					return
				}
			}
		}
	}
}

func (s *Subscription) handle(ctx context.Context, ev Event) bool {
	if !s.primed {
		s.primed = true
		s.last = ev.Seq - 1
	}
	if ev.Seq <= s.last {
		return true
	}
	if ev.Seq > s.last+1 {
		if !s.fill(ctx, ev.Seq-1) {
			return false
		}
		if ev.Seq <= s.last {
			return true
		}
		if ev.Seq > s.last+1 {
			s.hub.log.Warn("delivering past unfilled gap",
				"conversation_id", s.conversationID, "from", s.last+1, "to", ev.Seq-1)
		}
	}
	return s.emit(ctx, ev)
}

// fill emits stored messages after s.last, up to upTo (0 for all). A store
// failure is logged and live delivery continues; only cancellation stops it.
func (s *Subscription) fill(ctx context.Context, upTo int64) bool {
	for {
		msgs, err := s.hub.source.After(ctx, s.conversationID, s.last, upTo, fillPage)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			s.hub.log.Warn("catch-up read failed", "conversation_id", s.conversationID, "after", s.last, "err", err)
			s.setErr(err)
			return true
		}
		for _, m := range msgs {
			ev := MessageEvent(m)
			ev.Replayed = true
			if !s.emit(ctx, ev) {
				return false
			}
		}
		if len(msgs) < fillPage {
			return true
		}
	}
}

func (s *Subscription) emit(ctx context.Context, ev Event) bool {
	select {
	case s.out <- ev:
		s.last = ev.Seq
		return true
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.Canceled) {
			s.setErr(ctx.Err())
		}
		return false
	}
}

func (s *Subscription) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}
