package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged <-chan StateChange
	ItemChanged  <-chan ItemChange
	Notices      <-chan Notice
	NextUp       <-chan NextUp
	MissingMedia <-chan MissingMedia
	Ended        <-chan Ended
	Done         <-chan struct{}

	// Internal write channels
	stateCh   chan StateChange
	itemCh    chan ItemChange
	noticeCh  chan Notice
	nextUpCh  chan NextUp
	missingCh chan MissingMedia
	endedCh   chan Ended
	doneCh    chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:   make(chan StateChange, eventBufferSize),
		itemCh:    make(chan ItemChange, eventBufferSize),
		noticeCh:  make(chan Notice, eventBufferSize),
		nextUpCh:  make(chan NextUp, eventBufferSize),
		missingCh: make(chan MissingMedia, eventBufferSize),
		endedCh:   make(chan Ended, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.ItemChanged = s.itemCh
	s.Notices = s.noticeCh
	s.NextUp = s.nextUpCh
	s.MissingMedia = s.missingCh
	s.Ended = s.endedCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// All sends are non-blocking: a slow subscriber loses events rather than
// stalling the controller.

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendItem(e ItemChange) {
	select {
	case s.itemCh <- e:
	default:
	}
}

func (s *Subscription) sendNotice(e Notice) {
	select {
	case s.noticeCh <- e:
	default:
	}
}

func (s *Subscription) sendNextUp(e NextUp) {
	select {
	case s.nextUpCh <- e:
	default:
	}
}

func (s *Subscription) sendMissing(e MissingMedia) {
	select {
	case s.missingCh <- e:
	default:
	}
}

func (s *Subscription) sendEnded(e Ended) {
	select {
	case s.endedCh <- e:
	default:
	}
}
