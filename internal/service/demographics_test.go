package service

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieu-neron/channel-insight/internal/model"
)

func profilesWithGender(genders ...model.Gender) []model.AuthorProfile {
	out := make([]model.AuthorProfile, len(genders))
	for i, g := range genders {
		out[i] = model.AuthorProfile{ChannelID: string(rune('a' + i)), Gender: g, JoinedDate: "Jan 1, 2018"}
	}
	return out
}

func TestGenderSplit(t *testing.T) {
	male, female, err := GenderSplit(profilesWithGender(
		model.GenderMale, model.GenderFemale, model.GenderUnknown, model.GenderMale,
	))
	require.NoError(t, err)
	assert.Equal(t, 66.67, male)
	assert.Equal(t, 33.33, female)
}

func TestGenderSplit_NoneClassified(t *testing.T) {
	_, _, err := GenderSplit(profilesWithGender(model.GenderUnknown, model.GenderUnknown))
	assert.ErrorIs(t, err, ErrNoClassifiedAuthors)
}

func TestYearHistogramOf(t *testing.T) {
	profiles := []model.AuthorProfile{
		{JoinedDate: "Jun 3, 2019"},
		{JoinedDate: "Feb 1, 2015"},
		{JoinedDate: "Oct 9, 2019"},
		{JoinedDate: "Jan 7, 2021"},
		{JoinedDate: "?"},
	}
	hist := YearHistogramOf(profiles)
	assert.Equal(t, model.YearHistogram{
		{Year: "2015", Count: 1},
		{Year: "2019", Count: 2},
		{Year: "2021", Count: 1},
	}, hist)
}

func TestYearHistogramOf_MultibyteTail(t *testing.T) {
	hist := YearHistogramOf([]model.AuthorProfile{
		{JoinedDate: "2015/03/04に登録"},
		{JoinedDate: "に登録"},
	})

	require.Len(t, hist, 1)
	assert.Equal(t, "4に登録", hist[0].Year)
	assert.True(t, utf8.ValidString(hist[0].Year))
	assert.Equal(t, 1, hist[0].Count)
}

func TestAggregateDemographics(t *testing.T) {
	profiles := []model.AuthorProfile{
		{ChannelID: "1", Name: "John Smith", JoinedDate: "Jun 3, 2019"},
		{ChannelID: "2", Name: "Mary Jones", JoinedDate: "Feb 1, 2015"},
		{ChannelID: "3", Name: "xXgamerXx", JoinedDate: "Oct 9, 2019"},
	}

	res := AggregateDemographics(profiles, Ok(0.25))
	require.NoError(t, res.Err)
	d := res.Value
	assert.Equal(t, 50.0, d.MalePercentage)
	assert.Equal(t, 50.0, d.FemalePercentage)
	assert.Equal(t, 3, d.AuthorsSampled)
	assert.Equal(t, 2, d.CreationYearDivision.Count("2019"))

	var total float64
	for _, share := range d.AgeBrackets {
		total += share
	}
	assert.InDelta(t, 100, total, 0.001)
}

func TestAggregateDemographics_FailsAsUnit(t *testing.T) {
	res := AggregateDemographics(nil, Ok(0.1))
	assert.ErrorIs(t, res.Err, ErrNoClassifiedAuthors)

	res = AggregateDemographics(profilesWithGender(model.GenderMale), Fail[float64](ErrNoViews))
	assert.ErrorIs(t, res.Err, ErrNoViews)

	res = AggregateDemographics(profilesWithGender(model.GenderMale), Fail[float64](errors.New("x")))
	assert.False(t, res.OK())
}
