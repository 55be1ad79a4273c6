// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll implements viewport anchor math for backward pagination.
package scroll

import (
	"testing"
)

// extentRun lays out messages with the given ids and per-message heights
// into contiguous extents starting at line 0.
func extentRun(ids []int64, height int) []Extent {
	extents := make([]Extent, 0, len(ids))
	top := 0
	for _, id := range ids {
		extents = append(extents, Extent{MessageID: id, Top: top, Height: height})
		top += height
	}
	return extents
}

func ids(from, to int64) []int64 {
	out := []int64{}
	for id := from; id <= to; id++ {
		out = append(out, id)
	}
	return out
}

// Scroll anchoring scenario: messages 50..60 rendered, message 55 first
// visible at offset y. After 40..49 are prepended, 55 must end up at the
// same viewport offset.
func TestAnchor_PrependKeepsFraming(t *testing.T) {
	const height = 3
	before := extentRun(ids(50, 60), height)

	// Viewport framed so id 55 is the first visible message, 1 line shy of
	// its top (partially visible), i.e. offset y = -1.
	m := Metrics{ScrollOffset: 16, ViewportHeight: 10, ContentHeight: 11 * height}
	a := ComputeAnchor(before, m)
	if a.MessageID != 55 {
		t.Fatalf("anchor id = %d, want 55", a.MessageID)
	}
	y := a.Offset

	after := extentRun(ids(40, 60), height)
	newM := Metrics{ViewportHeight: 10, ContentHeight: 21 * height}
	offset := RestoreAnchor(a, after, newM)

	// Locate 55 in the new layout and check its framing.
	var top55 int
	for _, e := range after {
		if e.MessageID == 55 {
			top55 = e.Top
		}
	}
	if got := top55 - offset; got != y {
		t.Errorf("id 55 rendered at viewport offset %d, want %d", got, y)
	}
}

func TestComputeAnchor_FirstFullyVisible(t *testing.T) {
	extents := extentRun(ids(1, 5), 4)
	m := Metrics{ScrollOffset: 8, ViewportHeight: 8, ContentHeight: 20}

	a := ComputeAnchor(extents, m)
	if a.MessageID != 3 {
		t.Errorf("anchor id = %d, want 3", a.MessageID)
	}
	if a.Offset != 0 {
		t.Errorf("anchor offset = %d, want 0", a.Offset)
	}
}

func TestComputeAnchor_EmptyContent(t *testing.T) {
	a := ComputeAnchor(nil, Metrics{ViewportHeight: 10})
	if a.MessageID != 0 {
		t.Errorf("anchor id = %d, want 0 for empty content", a.MessageID)
	}
}

// Fallback path: the anchored message is gone after the reload, so the
// height delta keeps the viewport stationary.
func TestRestoreAnchor_FallbackHeightDelta(t *testing.T) {
	a := Anchor{MessageID: 999, Offset: 0, ScrollOffset: 12, ContentHeight: 30}
	after := extentRun(ids(40, 60), 3)
	m := Metrics{ViewportHeight: 10, ContentHeight: 63}

	offset := RestoreAnchor(a, after, m)
	if want := 12 + (63 - 30); offset != want {
		t.Errorf("fallback offset = %d, want %d", offset, want)
	}
}

func TestRestoreAnchor_ClampsToContent(t *testing.T) {
	a := Anchor{MessageID: 0, ScrollOffset: 50, ContentHeight: 10}
	offset := RestoreAnchor(a, nil, Metrics{ViewportHeight: 10, ContentHeight: 12})
	if offset != 2 {
		t.Errorf("offset = %d, want clamp to 2", offset)
	}

	offset = RestoreAnchor(Anchor{ScrollOffset: -5, ContentHeight: 20}, nil, Metrics{ViewportHeight: 10, ContentHeight: 8})
	if offset != 0 {
		t.Errorf("offset = %d, want clamp to 0", offset)
	}
}

func TestNearTopNearBottom(t *testing.T) {
	m := Metrics{ScrollOffset: 2, ViewportHeight: 10, ContentHeight: 40}
	if !NearTop(m, 3) {
		t.Error("offset 2 should be near top with threshold 3")
	}
	if NearTop(m, 1) {
		t.Error("offset 2 should not be near top with threshold 1")
	}
	if NearBottom(m, 3) {
		t.Error("28 lines below the fold should not be near bottom")
	}

	m.ScrollOffset = 29
	if !NearBottom(m, 3) {
		t.Error("1 line below the fold should be near bottom")
	}
}
