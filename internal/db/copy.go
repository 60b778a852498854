package db

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gyeh/dischargeprep/internal/model"
)

// ChannelSource implements pgx.CopyFromSource by reading LoadRows from a
// channel. Rows without a patient are rejected with an error, which aborts
// the COPY.
type ChannelSource struct {
	ch      <-chan *model.LoadRow
	current *model.LoadRow
	sent    int64
	err     error
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource(ch <-chan *model.LoadRow) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.sent++
	return true
}

// Sent returns how many rows have been handed to COPY so far.
func (s *ChannelSource) Sent() int64 {
	return s.sent
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource) Values() ([]any, error) {
	if s.current.Patient == "" {
		s.err = fmt.Errorf("row %d: blank patient", s.current.SourceRowNumber)
		return nil, s.err
	}
	return s.current.CopyValues(), nil
}

// Err returns any error encountered during iteration.
func (s *ChannelSource) Err() error {
	return s.err
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
