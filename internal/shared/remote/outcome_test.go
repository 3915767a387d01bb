package remote

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructors_TagOutcomes(t *testing.T) {
	require.True(t, Confirmed(1).IsConfirmed())

	failed := Failed[int]("boom", 500)
	require.True(t, failed.IsFailed())
	require.False(t, failed.IsAmbiguous())
	require.Equal(t, 500, failed.Status)

	ambiguous := Ambiguous(4, "unexpected EOF", 201)
	require.True(t, ambiguous.IsAmbiguous())
	require.Equal(t, 4, ambiguous.Value)
	require.Equal(t, "unexpected EOF", ambiguous.Reason)
}

func TestMap_KeepsTagAndSkipsFailedPayload(t *testing.T) {
	called := false
	mapped := Map(Failed[int]("nope", 0), func(v int) string {
		called = true
		return strconv.Itoa(v)
	})
	require.False(t, called)
	require.True(t, mapped.IsFailed())
	require.Equal(t, "nope", mapped.Reason)

	amb := Map(Ambiguous(7, "garbled", 200), strconv.Itoa)
	require.True(t, amb.IsAmbiguous())
	require.Equal(t, "7", amb.Value)
	require.Equal(t, 200, amb.Status)

	ok := Map(Confirmed(3), strconv.Itoa)
	require.True(t, ok.IsConfirmed())
	require.Equal(t, "3", ok.Value)
}
