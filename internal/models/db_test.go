package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusAdvancesOnlyForward(t *testing.T) {
	assert.True(t, StatusPending.CanAdvanceTo(StatusReadyToSend))
	assert.True(t, StatusPending.CanAdvanceTo(StatusDone))
	assert.True(t, StatusReadyToSend.CanAdvanceTo(StatusDone))

	assert.False(t, StatusDone.CanAdvanceTo(StatusReadyToSend))
	assert.False(t, StatusDone.CanAdvanceTo(StatusPending))
	assert.False(t, StatusReadyToSend.CanAdvanceTo(StatusPending))
	assert.False(t, StatusPending.CanAdvanceTo(StatusPending))
}

func TestJobStatusUnknownNeverAdvances(t *testing.T) {
	unknown := JobStatus("Archived")
	assert.False(t, unknown.CanAdvanceTo(StatusDone))
	assert.False(t, StatusPending.CanAdvanceTo(unknown))
}

func TestHasLetter(t *testing.T) {
	var job Job
	assert.False(t, job.HasLetter())

	empty := ""
	job.MotivationLetterPath = &empty
	assert.False(t, job.HasLetter())

	path := "output/letters/Bewerbung_Firma_1.pdf"
	job.MotivationLetterPath = &path
	assert.True(t, job.HasLetter())
}
