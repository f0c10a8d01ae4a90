package detect

import (
	"testing"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// fakeClock is an adjustable clock for time-window tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func clickEvent(viewID, viewType, text, desc string) *model.AccessibilityEvent {
	return &model.AccessibilityEvent{
		App:      PackageInstagram,
		Kind:     model.EventClicked,
		ViewID:   viewID,
		ViewType: viewType,
		Text:     text,
		Desc:     desc,
	}
}

func TestClickContext_ReelClickWindowBounds(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	ctx := NewClickContext(clock.Now, 1500*time.Millisecond, 30*time.Second)

	ctx.Observe(clickEvent(reelsTabViewID, "android.view.View", "", ""))

	if !ctx.RecentReelClick() {
		t.Fatal("RecentReelClick = false at T, want true")
	}
	clock.Advance(1500 * time.Millisecond)
	if !ctx.RecentReelClick() {
		t.Fatal("RecentReelClick = false at T+1500ms, want true (inclusive bound)")
	}
	clock.Advance(time.Millisecond)
	if ctx.RecentReelClick() {
		t.Fatal("RecentReelClick = true strictly after T+1500ms, want false")
	}
}

func TestClickContext_NeverClicked(t *testing.T) {
	t.Parallel()

	ctx := NewClickContext(newFakeClock().Now, 0, 0)
	if ctx.RecentReelClick() {
		t.Fatal("RecentReelClick = true with no clicks observed")
	}
}

func TestClickContext_ReelMarkersByDescriptionAndText(t *testing.T) {
	t.Parallel()

	cases := map[string]*model.AccessibilityEvent{
		"tab id":       clickEvent(reelsTabViewID, "", "", ""),
		"desc reels":   clickEvent("", "", "", "Reels"),
		"text reel by": clickEvent("", "", "Reel by jane", ""),
		"desc reel by": clickEvent("", "", "", "Reel by jane"),
	}
	for name, ev := range cases {
		clock := newFakeClock()
		ctx := NewClickContext(clock.Now, 0, 0)
		ctx.Observe(ev)
		if !ctx.RecentReelClick() {
			t.Errorf("%s: reel click not marked", name)
		}
	}
}

func TestClickContext_ImageTapAfterExploreMarksReelClick(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	ctx := NewClickContext(clock.Now, 1500*time.Millisecond, 30*time.Second)

	ctx.Observe(clickEvent(exploreTabViewID, "", "", "Search and explore"))
	if ctx.RecentReelClick() {
		t.Fatal("explore click alone marked a reel click")
	}

	clock.Advance(5 * time.Second)
	ctx.Observe(clickEvent("", "android.widget.ImageView", "", ""))
	if !ctx.RecentReelClick() {
		t.Fatal("image tap inside explore window did not mark a reel click")
	}
}

func TestClickContext_ImageTapOutsideExploreWindowIgnored(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	ctx := NewClickContext(clock.Now, 1500*time.Millisecond, 30*time.Second)

	ctx.Observe(clickEvent("", "", "", "Search and explore"))
	clock.Advance(31 * time.Second)
	ctx.Observe(clickEvent("", "android.widget.ImageView", "", ""))

	if ctx.RecentReelClick() {
		t.Fatal("image tap after explore window expiry marked a reel click")
	}
}

func TestClickContext_NonImageTapAfterExploreIgnored(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	ctx := NewClickContext(clock.Now, 1500*time.Millisecond, 30*time.Second)

	ctx.Observe(clickEvent(exploreTabViewID, "", "", ""))
	clock.Advance(time.Second)
	ctx.Observe(clickEvent("", "android.widget.Button", "Follow", ""))

	if ctx.RecentReelClick() {
		t.Fatal("non-image tap marked a reel click")
	}
}
