// Package moodboard sequences the four per-angle synthesis calls of one
// generation run and assembles their results.
package moodboard

// View is one generated angle of the moodboard. Views are immutable; edits
// produce a replacement View for a label, never an in-place change.
type View struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Moodboard is the ordered four-view result of a run: Front, Close-up, Back,
// Side, always in that order.
type Moodboard []View
