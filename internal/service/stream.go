package service

import (
	"class-panel/api"
)

// Subscribe returns a channel receiving a snapshot after every command and
// every refresh tick. Slow readers miss intermediate snapshots rather than
// stalling the loop. The returned func unsubscribes and closes the channel.
func (s *Service) Subscribe() (<-chan api.SessionResponse, func()) {
	ch := make(chan api.SessionResponse, 1)

	s.subsMu.Lock()
	if s.subs == nil {
		s.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}

	return ch, cancel
}

// closeSubscribers ends every stream; later Subscribe calls get a closed channel.
func (s *Service) closeSubscribers() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

// publish runs on the loop goroutine only.
func (s *Service) publish() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if len(s.subs) == 0 {
		return
	}

	snap := toSessionResponse(s.session.Snapshot())
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale value so the reader sees the newest one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
