package people

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Option configures a Controller at construction.
type Option func(*Controller)

// WithSearchText seeds the search text before the first page arrives.
func WithSearchText(text string) Option {
	return func(c *Controller) {
		c.searchText = text
	}
}

type listenerEntry struct {
	id       int
	callback func(ViewState)
}

// Controller owns the people list: paging, client-side search, error
// recovery and the music side effect tied to reaching the end of the list.
//
// All state is guarded by mu, which is never held across a call into the
// source or the music controller. Intents that do not wait on I/O can run
// while a fetch is in flight; isLoading keeps fetches strictly sequential.
type Controller struct {
	source PeopleSource
	music  MusicController
	logger *zap.Logger

	mu              sync.Mutex
	allPeople       []domain.Person
	visiblePeople   []domain.Person
	searchText      string
	currentPage     int
	isLoading       bool
	reachedEnd      bool
	hasError        bool
	isPlayingMusic  bool
	presentedPerson *domain.Person
	hasLoaded       bool
	closed          bool
	version         uint64

	listeners      []listenerEntry
	nextListenerID int

	effects       conc.WaitGroup
	effectsCtx    context.Context
	cancelEffects context.CancelFunc
}

// NewController creates a controller with empty state on page 1.
func NewController(source PeopleSource, music MusicController, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	effectsCtx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		source:         source,
		music:          music,
		logger:         logger,
		currentPage:    1,
		nextListenerID: 1,
		effectsCtx:     effectsCtx,
		cancelEffects:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the first page unless a page has already loaded successfully.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.hasLoaded || c.isLoading {
		c.mu.Unlock()
		return
	}
	page := c.beginFetchLocked()
	c.mu.Unlock()

	c.notify()
	c.fetchPage(ctx, page)
}

// OnReachedEnd requests the next page when the view scrolled to its last
// row. Ignored while a fetch is running or once the last page has loaded.
func (c *Controller) OnReachedEnd(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.isLoading || c.reachedEnd {
		c.mu.Unlock()
		return
	}
	c.currentPage++
	page := c.beginFetchLocked()
	c.mu.Unlock()

	c.notify()
	c.fetchPage(ctx, page)
}

// Retry drops everything loaded so far and starts again from page 1.
// Ignored while a fetch is running.
func (c *Controller) Retry(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.isLoading {
		c.mu.Unlock()
		return
	}
	c.hasError = false
	c.currentPage = 1
	c.allPeople = nil
	c.visiblePeople = nil
	c.setReachedEndLocked(false)
	page := c.beginFetchLocked()
	c.mu.Unlock()

	c.notify()
	c.fetchPage(ctx, page)
}

// SetSearchText filters the loaded people by name. It never fetches.
func (c *Controller) SetSearchText(text string) {
	c.mu.Lock()
	if c.closed || text == c.searchText {
		c.mu.Unlock()
		return
	}
	c.searchText = text
	c.refilterLocked()
	c.mu.Unlock()

	c.notify()
}

// SelectPerson presents the detail screen for person.
func (c *Controller) SelectPerson(person domain.Person) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.presentedPerson = &person
	c.mu.Unlock()

	c.notify()
}

// Dismiss closes the detail screen.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.closed || c.presentedPerson == nil {
		c.mu.Unlock()
		return
	}
	c.presentedPerson = nil
	c.mu.Unlock()

	c.notify()
}

// OnWaveformTapped stops the music. Failures are logged and the playing
// flag is left as it was.
func (c *Controller) OnWaveformTapped(ctx context.Context) {
	if err := c.music.Stop(ctx); err != nil {
		c.reportPlaybackError("stop", err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.isPlayingMusic = false
	c.mu.Unlock()

	c.notify()
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// AllPeople returns every loaded person in fetch order, ignoring search.
func (c *Controller) AllPeople() []domain.Person {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.allPeople)
}

// Subscribe registers callback for every state change and returns a
// function that removes it. Callbacks run on the goroutine that made the
// change and must not block.
func (c *Controller) Subscribe(callback func(ViewState)) func() {
	c.mu.Lock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners = append(c.listeners, listenerEntry{id: id, callback: callback})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.listeners = slices.DeleteFunc(c.listeners, func(entry listenerEntry) bool {
			return entry.id == id
		})
	}
}

// Wait blocks until pending music side effects have finished.
func (c *Controller) Wait() {
	if recovered := c.effects.WaitAndRecover(); recovered != nil {
		c.logger.Error("Music side effect panicked", zap.Error(recovered.AsError()))
	}
}

// Close detaches the controller. Fetches and side effects that complete
// afterwards are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.listeners = nil
	c.cancelEffects()
	c.mu.Unlock()

	c.Wait()
}

// must be called with lock held
func (c *Controller) beginFetchLocked() int {
	c.isLoading = true
	return c.currentPage
}

func (c *Controller) fetchPage(ctx context.Context, page int) {
	settled := false
	defer func() {
		// a panicking source must not leave the guard set
		if settled {
			return
		}
		c.mu.Lock()
		c.isLoading = false
		c.mu.Unlock()
	}()

	result, err := c.source.Fetch(ctx, page)
	if err == nil && result == nil {
		err = fmt.Errorf("people source returned no page")
	}
	settled = true

	c.mu.Lock()
	c.isLoading = false
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("Discarding people page for closed controller", zap.Int("page", page))
		return
	}

	if err != nil {
		c.hasError = true
		c.mu.Unlock()

		c.reportFetchError(page, err)
		c.notify()
		return
	}

	c.hasError = false
	c.hasLoaded = true
	c.allPeople = append(c.allPeople, result.Results...)
	c.refilterLocked()
	if c.setReachedEndLocked(!result.HasNext()) && !c.isPlayingMusic {
		c.playMusicLocked()
	}
	total := len(c.allPeople)
	reachedEnd := c.reachedEnd
	c.mu.Unlock()

	c.logger.Debug("People page loaded",
		zap.Int("page", page),
		zap.Int("results", len(result.Results)),
		zap.Int("total", total),
		zap.Bool("reached_end", reachedEnd),
	)
	c.notify()
}

// setReachedEndLocked stores the flag and reports a false -> true edge.
func (c *Controller) setReachedEndLocked(reached bool) bool {
	rose := reached && !c.reachedEnd
	c.reachedEnd = reached
	return rose
}

// must be called with lock held
func (c *Controller) refilterLocked() {
	c.visiblePeople = FilterPeople(c.allPeople, c.searchText)
}

// playMusicLocked schedules Load then Play. Scheduling under the lock
// keeps it ordered before any Close.
func (c *Controller) playMusicLocked() {
	ctx := c.effectsCtx
	c.effects.Go(func() {
		if err := c.music.Load(ctx); err != nil {
			c.reportPlaybackError("load", err)
			return
		}
		if err := c.music.Play(ctx); err != nil {
			c.reportPlaybackError("play", err)
			return
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.isPlayingMusic = true
		c.mu.Unlock()

		c.logger.Info("Music started for completed people list")
		c.notify()
	})
}

func (c *Controller) reportFetchError(page int, err error) {
	fetchErr := errors.NewFetchError(page, err)
	c.logger.Error("Failed to fetch people",
		zap.Int("page", page),
		zap.String("code", fetchErr.Code),
		zap.Error(fetchErr),
	)
}

func (c *Controller) reportPlaybackError(operation string, err error) {
	playbackErr := errors.NewPlaybackError(operation, err)
	c.logger.Warn("Music playback failed",
		zap.String("operation", operation),
		zap.String("code", playbackErr.Code),
		zap.Error(playbackErr),
	)
}

// must be called with lock held
func (c *Controller) snapshotLocked() ViewState {
	state := ViewState{
		Version:        c.version,
		VisiblePeople:  slices.Clone(c.visiblePeople),
		SearchText:     c.searchText,
		CurrentPage:    c.currentPage,
		TotalLoaded:    len(c.allPeople),
		IsLoading:      c.isLoading,
		ReachedEnd:     c.reachedEnd,
		HasError:       c.hasError,
		IsPlayingMusic: c.isPlayingMusic,
	}
	if c.presentedPerson != nil {
		presented := *c.presentedPerson
		state.PresentedPerson = &presented
	}
	return state
}

func (c *Controller) notify() {
	c.mu.Lock()
	c.version++
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	state := c.snapshotLocked()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, entry := range listeners {
		entry.callback(state)
	}
}
