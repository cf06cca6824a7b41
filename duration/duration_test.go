package duration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_DelegatesToStdlib(t *testing.T) {
	d, err := Parse("1h30m")
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, d.Time())
}

func TestParse_InvalidReturnsError(t *testing.T) {
	_, err := Parse("not-a-duration")
	require.Error(t, err)
}

func TestString_FormatsDaysSeparately(t *testing.T) {
	d := Days(1) + Hours(2) + Minutes(3) + Seconds(4)
	require.Equal(t, "1d2h3m4s", d.String())
}

func TestString_NoDaysOmitsDayPrefix(t *testing.T) {
	d := Hours(2) + Minutes(30)
	require.Equal(t, "2h30m0s", d.String())
}

func TestDays_FloorsWholeDays(t *testing.T) {
	d := Days(2) + Hours(5)
	require.Equal(t, int64(2), d.Days())
}

func TestParseDuration_RoundTrips(t *testing.T) {
	std := 5 * time.Second
	require.Equal(t, std, ParseDuration(std).Time())
}

func TestParseFloat64_RoundsToNearestSecond(t *testing.T) {
	require.Equal(t, Seconds(3), ParseFloat64(3.4))
}

func TestJSON_MarshalUnmarshalRoundtrips(t *testing.T) {
	type wrapper struct {
		Interval Duration `json:"interval"`
	}

	in := wrapper{Interval: Seconds(90)}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out wrapper
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, in.Interval, out.Interval)
}
