// Package playlist implements the ordered Media Source list (C12):
// next/prev/skip navigation, clearing, rewinding, shuffling, and the
// list-loop / single-loop flags that decide what "next" means once the
// list has been exhausted or the same track should repeat.
//
// There is no teacher playlist code (QAnotherRTSP manages a fixed set of
// camera windows, not a navigable queue); this package follows the
// teacher's general conventions instead (small exported methods, no
// exceptions, explicit bool/ok returns for "nothing there") while the
// list/shuffle/loop semantics themselves are grounded on
// rinbarpen/multimedia's playlist-adjacent Player.hpp operations named
// in the distilled spec's C12 module.
package playlist

import "math/rand"

// LoopMode controls what Next does once the cursor reaches the end (or
// what Prev does at the start).
type LoopMode int

const (
	// LoopNone stops advancing past either end of the list.
	LoopNone LoopMode = iota
	// LoopList wraps the cursor back to the opposite end.
	LoopList
	// LoopSingle repeats the current item regardless of Next/Prev calls.
	LoopSingle
)

// Playlist is an ordered, cursor-based sequence of media source URLs/
// paths. It is not safe for concurrent use; the Player that owns one
// serializes access through its own state machine.
type Playlist struct {
	items  []string
	cursor int
	mode   LoopMode
}

// New returns an empty Playlist with no looping.
func New() *Playlist {
	return &Playlist{cursor: -1, mode: LoopNone}
}

// SetLoopMode changes how Next/Prev behave at the ends of the list.
func (p *Playlist) SetLoopMode(mode LoopMode) {
	p.mode = mode
}

// Add appends a media source to the end of the list.
func (p *Playlist) Add(source string) {
	p.items = append(p.items, source)
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// Clear empties the list and resets the cursor.
func (p *Playlist) Clear() {
	p.items = nil
	p.cursor = -1
}

// Size returns the number of items in the list.
func (p *Playlist) Size() int {
	return len(p.items)
}

// IsEmpty reports whether the list has no items.
func (p *Playlist) IsEmpty() bool {
	return len(p.items) == 0
}

// Current returns the item at the cursor, if any.
func (p *Playlist) Current() (string, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return "", false
	}
	return p.items[p.cursor], true
}

// Rewind moves the cursor back to the first item.
func (p *Playlist) Rewind() {
	if len(p.items) == 0 {
		p.cursor = -1
		return
	}
	p.cursor = 0
}

// Next advances the cursor and returns the new current item. At the end
// of the list it loops or stops depending on the configured LoopMode.
// LoopSingle keeps the cursor exactly where it is.
func (p *Playlist) Next() (string, bool) {
	if p.IsEmpty() {
		return "", false
	}
	if p.mode == LoopSingle {
		return p.Current()
	}
	if p.cursor+1 < len(p.items) {
		p.cursor++
		return p.Current()
	}
	if p.mode == LoopList {
		p.cursor = 0
		return p.Current()
	}
	return "", false
}

// Prev moves the cursor backward and returns the new current item,
// honoring the same loop rules as Next but at the opposite end.
func (p *Playlist) Prev() (string, bool) {
	if p.IsEmpty() {
		return "", false
	}
	if p.mode == LoopSingle {
		return p.Current()
	}
	if p.cursor-1 >= 0 {
		p.cursor--
		return p.Current()
	}
	if p.mode == LoopList {
		p.cursor = len(p.items) - 1
		return p.Current()
	}
	return "", false
}

// SkipTo jumps directly to index i, returning the item there.
func (p *Playlist) SkipTo(i int) (string, bool) {
	if i < 0 || i >= len(p.items) {
		return "", false
	}
	p.cursor = i
	return p.Current()
}

// Shuffle randomizes item order in place, keeping the currently-playing
// item (if any) as the new first element so an in-progress playback
// isn't interrupted by the reshuffle.
func (p *Playlist) Shuffle() {
	if len(p.items) < 2 {
		return
	}
	current, hasCurrent := p.Current()

	rand.Shuffle(len(p.items), func(i, j int) {
		p.items[i], p.items[j] = p.items[j], p.items[i]
	})

	if hasCurrent {
		for i, item := range p.items {
			if item == current && i != 0 {
				p.items[i], p.items[0] = p.items[0], p.items[i]
				break
			}
		}
		p.cursor = 0
	}
}
