// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll implements viewport anchor math for backward pagination.
package scroll

// =============================================================================
// METRICS AND EXTENTS
// =============================================================================

// Metrics describes the scrollable state of a rendered message viewport.
// All values are in content lines (the TUI equivalent of pixels).
type Metrics struct {
	// ScrollOffset is the index of the first content line in view.
	ScrollOffset int
	// ViewportHeight is the number of visible lines.
	ViewportHeight int
	// ContentHeight is the total number of rendered content lines.
	ContentHeight int
}

// Extent records where one message's rendering landed in the content:
// lines [Top, Top+Height).
type Extent struct {
	MessageID int64
	Top       int
	Height    int
}

// Anchor is the token recorded before a backward-pagination prepend. It
// pins the first visible message and its offset from the top of the
// viewport, plus enough of the old metrics for the fallback path.
type Anchor struct {
	// MessageID is the first fully or partially visible message, 0 when
	// nothing was visible.
	MessageID int64
	// Offset is the message's top relative to the viewport top. Negative
	// when the message is partially scrolled off above.
	Offset int
	// ScrollOffset and ContentHeight snapshot the metrics at record time.
	ScrollOffset  int
	ContentHeight int
}

// =============================================================================
// ANCHOR OPERATIONS
// =============================================================================

// ComputeAnchor scans the rendered extents for the first message visible
// within the viewport and records its identity and framing. Call this
// before issuing a load-more request.
func ComputeAnchor(extents []Extent, m Metrics) Anchor {
	a := Anchor{ScrollOffset: m.ScrollOffset, ContentHeight: m.ContentHeight}

	viewTop := m.ScrollOffset
	viewBottom := m.ScrollOffset + m.ViewportHeight
	for _, e := range extents {
		if e.Top+e.Height <= viewTop {
			continue // entirely above the viewport
		}
		if e.Top >= viewBottom {
			break // extents are ordered; the rest are below
		}
		a.MessageID = e.MessageID
		a.Offset = e.Top - viewTop
		return a
	}
	return a
}

// RestoreAnchor computes the scroll offset that restores the recorded
// framing after older content was prepended and re-rendered. If the
// anchored message can no longer be located, it falls back to shifting the
// old offset by the content-height delta, which keeps the viewport visually
// stationary without a specific element to pin to.
func RestoreAnchor(a Anchor, extents []Extent, m Metrics) int {
	if a.MessageID != 0 {
		for _, e := range extents {
			if e.MessageID == a.MessageID {
				return clampOffset(e.Top-a.Offset, m)
			}
		}
	}
	delta := m.ContentHeight - a.ContentHeight
	return clampOffset(a.ScrollOffset+delta, m)
}

// =============================================================================
// THRESHOLD HELPERS
// =============================================================================

// NearTop reports whether the viewport is within threshold lines of the top
// of the content. Crossing this boundary triggers backward pagination.
func NearTop(m Metrics, threshold int) bool {
	return m.ScrollOffset <= threshold
}

// NearBottom reports whether the viewport is within threshold lines of the
// bottom. Auto-scroll on new messages only applies when this holds, so a
// user reading history is not yanked back down.
func NearBottom(m Metrics, threshold int) bool {
	return m.ContentHeight-(m.ScrollOffset+m.ViewportHeight) <= threshold
}

// clampOffset bounds offset to the valid scroll range for m.
func clampOffset(offset int, m Metrics) int {
	max := m.ContentHeight - m.ViewportHeight
	if max < 0 {
		max = 0
	}
	if offset > max {
		return max
	}
	if offset < 0 {
		return 0
	}
	return offset
}
