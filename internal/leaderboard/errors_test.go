package leaderboard

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := NewFetchFailed("GET http://x/lb", 404, errors.New("not found"))
	assert.Equal(t, "GET http://x/lb: fetch failed (status 404): not found", err.Error())

	err = NewMalformed("", nil)
	assert.Equal(t, "malformed response", err.Error())
}

func TestKindOf_WrappedChains(t *testing.T) {
	base := NewFetchFailed("get", 0, errors.New("connection refused"))

	assert.True(t, IsFetchFailed(fmt.Errorf("pipeline: %w", base)))
	assert.True(t, IsFetchFailed(eris.Wrap(base, "pipeline: fetch")))
	assert.False(t, IsMalformed(base))

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewMalformed("decode", inner)
	assert.ErrorIs(t, err, inner)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "fetch failed", KindFetchFailed.String())
	assert.Equal(t, "malformed response", KindMalformedResponse.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
