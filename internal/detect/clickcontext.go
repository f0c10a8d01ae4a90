package detect

import (
	"strings"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// Clock returns the current time. Injected so tests can simulate elapsed
// time without real delays; Go time.Time readings carry a monotonic
// component, so subtraction is safe against wall-clock jumps.
type Clock func() time.Time

// ClickContext tracks the two click timestamps that disambiguate the Reels
// classifier: the last click plausibly opening a reel and the last click
// entering the explore surface. State lives for the process lifetime and is
// mutated only from the single event-handling path, so no locking is needed.
type ClickContext struct {
	clock         Clock
	reelWindow    time.Duration
	exploreWindow time.Duration

	lastReelClick    time.Time
	lastExploreClick time.Time
}

// NewClickContext creates a tracker with the given validity windows.
// Non-positive windows fall back to the shared defaults.
func NewClickContext(clock Clock, reelWindow, exploreWindow time.Duration) *ClickContext {
	if clock == nil {
		clock = time.Now
	}
	if reelWindow <= 0 {
		reelWindow = model.DefaultReelClickWindow
	}
	if exploreWindow <= 0 {
		exploreWindow = model.DefaultExploreWindow
	}
	return &ClickContext{
		clock:         clock,
		reelWindow:    reelWindow,
		exploreWindow: exploreWindow,
	}
}

// Observe inspects one click event and updates the tracked timestamps.
// It runs for every click, independent of any classification that follows.
func (c *ClickContext) Observe(ev *model.AccessibilityEvent) {
	if ev == nil {
		return
	}
	now := c.clock()

	text := strings.ToLower(ev.Text)
	desc := strings.ToLower(ev.Desc)

	reel := ev.ViewID == reelsTabViewID ||
		strings.Contains(desc, descReels) ||
		strings.Contains(text, phraseReelBy) ||
		strings.Contains(desc, phraseReelBy)
	explore := ev.ViewID == exploreTabViewID ||
		strings.Contains(desc, descSearchExplore)

	if reel {
		c.lastReelClick = now
	}
	if explore {
		c.lastExploreClick = now
	}
	if reel || explore {
		return
	}

	// Tapping an image shortly after entering explore most likely opens a
	// reel from the grid, which the text markers alone cannot prove.
	if c.recentWithin(c.lastExploreClick, c.exploreWindow, now) &&
		strings.Contains(strings.ToLower(ev.ViewType), imageViewTag) {
		c.lastReelClick = now
	}
}

// RecentReelClick reports whether a reel-opening click happened within the
// reel window, inclusive at both ends.
func (c *ClickContext) RecentReelClick() bool {
	return c.recentWithin(c.lastReelClick, c.reelWindow, c.clock())
}

func (c *ClickContext) recentWithin(mark time.Time, window time.Duration, now time.Time) bool {
	if mark.IsZero() {
		return false
	}
	elapsed := now.Sub(mark)
	return elapsed >= 0 && elapsed <= window
}
