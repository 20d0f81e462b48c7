package ui

import (
	"github.com/osa030/tunedeck/internal/app/notification"
	"github.com/osa030/tunedeck/internal/app/player"
)

// viewMsg carries a view pushed by the player.
type viewMsg notification.Envelope[player.View]

// subscriptionClosedMsg is sent once the player stops publishing views.
type subscriptionClosedMsg struct{}

// filesAddedMsg reports the outcome of adding files from the picker.
type filesAddedMsg struct {
	result player.AddResult
	err    error
}

// actionDoneMsg reports the outcome of a playback action run off the update loop.
type actionDoneMsg struct {
	err error
}
