package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCandidatesCSV(t *testing.T) {
	in := "channel_id,subscriber_count,country\n" +
		"UCbig, 90000, United States\n" +
		"UCfr,50000,France\n"

	got, err := ReadCandidatesCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{ChannelID: "UCbig", SubscriberCount: 90000, Country: "United States"},
		{ChannelID: "UCfr", SubscriberCount: 50000, Country: "France"},
	}, got)
}

func TestReadCandidatesCSV_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad count", "UCx,many,US\n"},
		{"missing field", "UCx,10\n"},
		{"empty id", " ,10,US\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCandidatesCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestReadCandidatesCSV_SeedsWarehouse(t *testing.T) {
	ctx := context.Background()
	s := newTestSink(t)

	cs, err := ReadCandidatesCSV(strings.NewReader("UCseed,12000,United States\n"))
	require.NoError(t, err)
	require.NoError(t, s.UpsertCandidates(ctx, cs))

	pending, err := s.ListPending(ctx, CandidateFilter{MinSubscribers: 5000, CountryLike: "%United S%", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"UCseed"}, pending)
}
