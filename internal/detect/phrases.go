// Package detect decides whether an accessibility snapshot shows a
// short-form video viewer and drives the blocking action for it.
package detect

// Package identities of the two watched apps. Events from any other app
// are ignored.
const (
	PackageYouTube   = "com.google.android.youtube"
	PackageInstagram = "com.instagram.android"
)

// Shorts phrase table. All substring tests run against the lower-cased
// joined snapshot text, except the handle marker which is matched against
// the raw labels (handles are case-sensitive in display).
const (
	phraseGoToChannel = "go to channel"
	phraseSubscribe   = "subscribe"
	handleMarker      = "@"

	// Full-video veto: a regular player screen shows player chrome plus an
	// explicit play affordance. Shorts show neither.
	phrasePlayerChrome = "video player"
	phrasePlayVideo    = "play video"
)

// Reels phrase table.
const (
	phraseReelBy       = "reel by"
	phraseDoubleTap    = "double tap to play"
	phraseLikeCount    = "like number"
	phraseViewLikes    = "view likes"
	phraseCommentCount = "comment number"
	phraseViewComments = "view comments"

	// Markers of surfaces that embed reel previews without being the
	// full-screen viewer.
	phraseReelsTray = "reels tray"
	phraseHomeFeed  = "home feed"
)

// Click-context markers. View identifiers are the stable resource ids of
// the bottom tab bar; descriptions cover localized builds that drop ids.
const (
	reelsTabViewID   = "com.instagram.android:id/clips_tab"
	exploreTabViewID = "com.instagram.android:id/search_tab"

	descReels         = "reels"
	descSearchExplore = "search and explore"

	imageViewTag = "image"
)

// View-type fragments suggesting an active video player on the triggering
// view. Recorded in decision signals for tuning; not part of the blocking
// rule.
var playerViewTags = []string{"videoview", "seekbar"}
