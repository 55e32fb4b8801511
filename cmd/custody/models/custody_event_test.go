package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	// No history means on-site
	assert.Equal(t, StatusIn, StatusOf(nil))

	assert.Equal(t, StatusOut, StatusOf(&CustodyEvent{Action: ActionCheckOut}))
	assert.Equal(t, StatusIn, StatusOf(&CustodyEvent{Action: ActionCheckIn}))
}

func TestCustodyActionValid(t *testing.T) {
	assert.True(t, ActionCheckIn.Valid())
	assert.True(t, ActionCheckOut.Valid())
	assert.False(t, CustodyAction("LOST").Valid())
	assert.False(t, CustodyAction("").Valid())
}

func TestErrorMatching(t *testing.T) {
	err := StoreError("query asset", assert.AnError)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.True(t, IsNotFound(&NotFoundError{Kind: "asset", Key: "A1"}))
	assert.False(t, IsNotFound(err))
}
