package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCandidatesCSV parses channel_id,subscriber_count,country rows. A header
// row starting with "channel_id" is skipped.
func ReadCandidatesCSV(r io.Reader) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []Candidate
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read candidates: %w", err)
		}
		if line == 1 && strings.EqualFold(rec[0], "channel_id") {
			continue
		}

		subs, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("read candidates: line %d: subscriber_count %q: %w", line, rec[1], err)
		}
		id := strings.TrimSpace(rec[0])
		if id == "" {
			return nil, fmt.Errorf("read candidates: line %d: empty channel_id", line)
		}
		out = append(out, Candidate{ChannelID: id, SubscriberCount: subs, Country: strings.TrimSpace(rec[2])})
	}
}
