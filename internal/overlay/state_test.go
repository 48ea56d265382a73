package overlay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lobbysight/lobbysight/internal/model"
)

type StateSuite struct {
	suite.Suite
	state *State
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateSuite))
}

func (s *StateSuite) SetupTest() {
	s.state = NewState()
}

func snapshotWith(seq uint64, names ...string) model.Snapshot {
	rows := make([]model.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, model.Row{
			Identity: model.Identity{Username: name},
			Kind:     model.KindLobby,
		})
	}
	return model.Snapshot{Seq: seq, Rows: rows}
}

func (s *StateSuite) TestEmptyStateReadsZeroSnapshot() {
	snapshot := s.state.ReadSnapshot()
	s.Zero(snapshot.Seq)
	s.Empty(snapshot.Rows)
}

func (s *StateSuite) TestPublishThenRead() {
	s.True(s.state.Publish(snapshotWith(1, "Technoblade")))

	snapshot := s.state.ReadSnapshot()
	s.EqualValues(1, snapshot.Seq)
	s.Require().Len(snapshot.Rows, 1)
	s.Equal("Technoblade", snapshot.Rows[0].Identity.Username)
}

func (s *StateSuite) TestStalePublishRejected() {
	s.True(s.state.Publish(snapshotWith(2, "newer")))
	s.False(s.state.Publish(snapshotWith(1, "older")))

	snapshot := s.state.ReadSnapshot()
	s.EqualValues(2, snapshot.Seq)
	s.Equal("newer", snapshot.Rows[0].Identity.Username)
}

func (s *StateSuite) TestEqualSeqRejected() {
	s.True(s.state.Publish(snapshotWith(1, "first")))
	s.False(s.state.Publish(snapshotWith(1, "second")))
	s.Equal("first", s.state.ReadSnapshot().Rows[0].Identity.Username)
}

func (s *StateSuite) TestSeqMonotonicUnderConcurrentPublishers() {
	var wg sync.WaitGroup
	for seq := uint64(1); seq <= 50; seq++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.state.Publish(snapshotWith(seq))
		}()
	}
	wg.Wait()

	s.EqualValues(50, s.state.ReadSnapshot().Seq)
}
