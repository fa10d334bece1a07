package sources

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDateAcceptsKnownLayouts(t *testing.T) {
	got := normalizeDate("January 2, 2024")
	require.NotNil(t, got)
	require.Equal(t, "2024-01-02", *got)
}

func TestNormalizeDateUnparseableReturnsNil(t *testing.T) {
	require.Nil(t, normalizeDate("sometime last year"))
	require.Nil(t, normalizeDate(""))
}

func TestDetectLocationFindsHeuristicMatch(t *testing.T) {
	loc := detectLocation("Remarks at Concord, NH Rally")
	require.NotNil(t, loc)
}

func TestDetectLocationNoMatchReturnsNilNotEmptyString(t *testing.T) {
	loc := detectLocation("Remarks")
	require.Nil(t, loc)
}

func TestParseISODurationHoursMinutesSeconds(t *testing.T) {
	require.Equal(t, "1:02:03", parseISODuration("PT1H2M3S"))
	require.Equal(t, "5:09", parseISODuration("PT5M9S"))
	require.Equal(t, "", parseISODuration("not-a-duration"))
}

func TestSlugNormalizesToLowercaseHyphenated(t *testing.T) {
	require.Equal(t, "remarks-on-the-economy", slug("Remarks on the Economy!"))
}
