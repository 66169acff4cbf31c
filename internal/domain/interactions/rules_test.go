package interactions

import (
	"testing"

	"virtual-pet/internal/platform/apperr"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	req := require.New(t)

	k, err := ParseKind("  FEED ")
	req.NoError(err)
	req.Equal(KindFeed, k)

	_, err = ParseKind("dance")
	req.ErrorIs(err, apperr.ErrValidation)

	_, err = ParseKind("")
	req.ErrorIs(err, apperr.ErrValidation)
}

func TestKinds_SortedAndComplete(t *testing.T) {
	require.Equal(t, []Kind{KindClean, KindFeed, KindPlay, KindSleep}, Kinds())
}

func TestRuleDefaults(t *testing.T) {
	want := map[Kind]Rule{
		KindFeed:  {Field: FieldHunger, Sign: -1, DefaultMagnitude: 10},
		KindPlay:  {Field: FieldHappiness, Sign: 1, DefaultMagnitude: 15},
		KindClean: {Field: FieldHappiness, Sign: 1, DefaultMagnitude: 5},
		KindSleep: {Field: FieldHappiness, Sign: 1, DefaultMagnitude: 8},
	}
	for k, r := range want {
		got, ok := RuleFor(k)
		require.True(t, ok, k)
		require.Equal(t, r, got, k)
	}
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-3))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}
