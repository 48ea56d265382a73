package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lobbysight/lobbysight/internal/dependencies/mocks"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/overlay"
	"github.com/lobbysight/lobbysight/internal/roster"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/services/stats"
	"github.com/lobbysight/lobbysight/internal/storage/memory"
	"github.com/lobbysight/lobbysight/internal/testutil"
)

// fakeClient resolves a fixed set of players and serves fixed stats
type fakeClient struct {
	uuids map[string]model.PlayerUUID
	stars map[model.PlayerUUID]float64
}

func (f *fakeClient) UUIDForName(ctx context.Context, name string) (model.PlayerUUID, error) {
	if uuid, ok := f.uuids[name]; ok {
		return uuid, nil
	}
	return "", model.ErrNotFound
}

func (f *fakeClient) Denick(ctx context.Context, nick string) (model.Identity, error) {
	return model.Identity{}, model.ErrNotFound
}

func (f *fakeClient) PlayerStats(ctx context.Context, uuid model.PlayerUUID) (model.StatsPayload, error) {
	if stars, ok := f.stars[uuid]; ok {
		return model.StatsPayload{Stars: stars}, nil
	}
	return model.StatsPayload{}, model.ErrNotFound
}

type OrchestratorSuite struct {
	suite.Suite
	clock        *mocks.MockClock
	tracker      *roster.Tracker
	state        *overlay.State
	orchestrator *Orchestrator
	ctx          context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()

	client := &fakeClient{
		uuids: map[string]model.PlayerUUID{
			"PartyPal": "11111111-1111-1111-1111-111111111111",
			"Zealous":  "22222222-2222-2222-2222-222222222222",
			"Anxious":  "33333333-3333-3333-3333-333333333333",
		},
		stars: map[model.PlayerUUID]float64{
			"11111111-1111-1111-1111-111111111111": 100,
			"22222222-2222-2222-2222-222222222222": 200,
			"33333333-3333-3333-3333-333333333333": 300,
		},
	}

	s.tracker = roster.New(logger)
	s.state = overlay.NewState()
	s.orchestrator = New(
		s.tracker,
		denick.New(memory.New(), client, s.clock, logger, denick.DefaultConfig()),
		stats.New(client, s.clock, logger, stats.DefaultConfig()),
		s.state,
		s.clock,
		logger,
		Config{Workers: 2},
	)
	s.ctx = context.Background()
}

func (s *OrchestratorSuite) join(username string, count int) {
	s.tracker.Apply(model.Event{
		Type:        model.EventLobbyJoin,
		Username:    username,
		PlayerCount: count,
		PlayerCap:   16,
	})
}

func (s *OrchestratorSuite) TestPassEnrichesLobbyMembers() {
	s.join("Zealous", 1)
	s.join("Anxious", 2)

	s.orchestrator.RunPass(s.ctx)

	snapshot := s.state.ReadSnapshot()
	s.Require().Len(snapshot.Rows, 2)
	s.False(snapshot.OutOfSync)

	for _, row := range snapshot.Rows {
		s.Equal(model.OutcomeKnown, row.Record.Outcome)
		s.True(row.Identity.Resolved())
	}
	s.Equal("Anxious", snapshot.Rows[0].Identity.Username)
	s.InDelta(300.0, snapshot.Rows[0].Record.Payload.Stars, 0.001)
}

func (s *OrchestratorSuite) TestPartyRowsSortFirst() {
	s.join("Zealous", 1)
	s.tracker.Apply(model.Event{
		Type:      model.EventPartyListIncoming,
		Usernames: []string{"PartyPal"},
	})

	s.orchestrator.RunPass(s.ctx)

	snapshot := s.state.ReadSnapshot()
	s.Require().Len(snapshot.Rows, 2)
	s.Equal("PartyPal", snapshot.Rows[0].Identity.Username)
	s.Equal(model.KindParty, snapshot.Rows[0].Kind)
	s.Equal("Zealous", snapshot.Rows[1].Identity.Username)
}

func (s *OrchestratorSuite) TestUnresolvableNameMarkedNicked() {
	s.join("MysteryNick", 1)

	s.orchestrator.RunPass(s.ctx)

	snapshot := s.state.ReadSnapshot()
	s.Require().Len(snapshot.Rows, 1)
	s.Equal(model.OutcomeNicked, snapshot.Rows[0].Record.Outcome)
	s.False(snapshot.Rows[0].Identity.Resolved())
}

func (s *OrchestratorSuite) TestPassPublishesPreliminaryThenFinal() {
	s.join("Zealous", 1)

	s.orchestrator.RunPass(s.ctx)

	// One preliminary publish and one final one
	s.EqualValues(2, s.state.ReadSnapshot().Seq)
}

func (s *OrchestratorSuite) TestOutOfSyncPropagates() {
	s.join("Zealous", 1)
	s.tracker.MarkOutOfSync()

	s.orchestrator.RunPass(s.ctx)

	s.True(s.state.ReadSnapshot().OutOfSync)
}

func (s *OrchestratorSuite) TestEmptyRosterPublishesEmptySnapshot() {
	s.orchestrator.RunPass(s.ctx)

	snapshot := s.state.ReadSnapshot()
	s.Empty(snapshot.Rows)
	s.NotZero(snapshot.Seq)
}

func (s *OrchestratorSuite) TestRunReactsToChangeSignal() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.orchestrator.Run(ctx)
	}()

	s.Eventually(func() bool {
		return s.state.ReadSnapshot().Seq > 0
	}, 2*time.Second, 10*time.Millisecond)

	s.join("Zealous", 1)

	s.Eventually(func() bool {
		snapshot := s.state.ReadSnapshot()
		return len(snapshot.Rows) == 1 &&
			snapshot.Rows[0].Record.Outcome == model.OutcomeKnown
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.FailNow("orchestrator did not stop on cancel")
	}
}
