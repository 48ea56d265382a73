package denick

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lobbysight/lobbysight/internal/dependencies/mocks"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/storage/memory"
	"github.com/lobbysight/lobbysight/internal/testutil"
)

const technoUUID = model.PlayerUUID("b876ec32-e396-476b-a115-8438d83c67d4")

// fakeClient counts remote calls and serves canned results
type fakeClient struct {
	uuids  map[string]model.PlayerUUID
	nicks  map[string]model.Identity
	err    error
	calls  int
	denick int
}

func (f *fakeClient) UUIDForName(ctx context.Context, name string) (model.PlayerUUID, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if uuid, ok := f.uuids[name]; ok {
		return uuid, nil
	}
	return "", model.ErrNotFound
}

func (f *fakeClient) Denick(ctx context.Context, nick string) (model.Identity, error) {
	f.denick++
	if f.err != nil {
		return model.Identity{}, f.err
	}
	if id, ok := f.nicks[nick]; ok {
		return id, nil
	}
	return model.Identity{}, model.ErrNotFound
}

func (f *fakeClient) PlayerStats(ctx context.Context, uuid model.PlayerUUID) (model.StatsPayload, error) {
	return model.StatsPayload{}, model.ErrNotFound
}

type DenickSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	storage *memory.Storage
	client  *fakeClient
	service *Service
	ctx     context.Context
}

func TestDenickSuite(t *testing.T) {
	suite.Run(t, new(DenickSuite))
}

func (s *DenickSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New()
	s.client = &fakeClient{
		uuids: map[string]model.PlayerUUID{"Technoblade": technoUUID},
		nicks: map[string]model.Identity{
			"Sneaky": {UUID: technoUUID, Username: "Technoblade"},
		},
	}
	s.service = New(s.storage, s.client, s.clock, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
}

func (s *DenickSuite) TestResolvesRealUsername() {
	id, ok := s.service.Resolve(s.ctx, "Technoblade")
	s.True(ok)
	s.Equal(technoUUID, id.UUID)
	s.Equal("Technoblade", id.Username)
}

func (s *DenickSuite) TestResolvesNickThroughProvider() {
	id, ok := s.service.Resolve(s.ctx, "Sneaky")
	s.True(ok)
	s.Equal(technoUUID, id.UUID)
	s.Equal("Technoblade", id.Username)
	s.Equal(1, s.client.denick)
}

func (s *DenickSuite) TestAliasTableWinsWithoutRemoteCall() {
	s.Require().NoError(s.storage.SaveAliasEntry(s.ctx, &model.AliasEntry{
		Alias: "Sneaky",
		UUID:  technoUUID,
	}))

	id, ok := s.service.Resolve(s.ctx, "Sneaky")
	s.True(ok)
	s.Equal(technoUUID, id.UUID)
	s.Zero(s.client.calls)
	s.Zero(s.client.denick)
}

func (s *DenickSuite) TestPositiveResultCached() {
	for range 5 {
		_, ok := s.service.Resolve(s.ctx, "Technoblade")
		s.True(ok)
	}
	s.Equal(1, s.client.calls)
}

func (s *DenickSuite) TestNegativeResultCached() {
	for range 5 {
		_, ok := s.service.Resolve(s.ctx, "UnknownNick")
		s.False(ok)
	}
	s.Equal(1, s.client.calls)
	s.Equal(1, s.client.denick)
}

func (s *DenickSuite) TestNegativeResultExpires() {
	_, ok := s.service.Resolve(s.ctx, "UnknownNick")
	s.False(ok)

	s.clock.Advance(DefaultConfig().CacheTTL + time.Second)

	_, ok = s.service.Resolve(s.ctx, "UnknownNick")
	s.False(ok)
	s.Equal(2, s.client.calls)
}

func (s *DenickSuite) TestTransientFailureCachedAsNegative() {
	s.client.err = errors.New("connection refused")
	_, ok := s.service.Resolve(s.ctx, "Technoblade")
	s.False(ok)

	// The failure sticks for the TTL like any other negative
	s.client.err = nil
	for range 3 {
		_, ok = s.service.Resolve(s.ctx, "Technoblade")
		s.False(ok)
	}
	s.Equal(1, s.client.calls)

	s.clock.Advance(DefaultConfig().CacheTTL + time.Second)

	id, ok := s.service.Resolve(s.ctx, "Technoblade")
	s.True(ok)
	s.Equal(technoUUID, id.UUID)
	s.Equal(2, s.client.calls)
}

func (s *DenickSuite) TestForgetDropsCachedEntry() {
	_, ok := s.service.Resolve(s.ctx, "UnknownNick")
	s.False(ok)

	s.service.Forget("UnknownNick")

	_, _ = s.service.Resolve(s.ctx, "UnknownNick")
	s.Equal(2, s.client.calls)
}

func (s *DenickSuite) TestResolveIsCaseInsensitiveForAliases() {
	s.Require().NoError(s.storage.SaveAliasEntry(s.ctx, &model.AliasEntry{
		Alias: "Sneaky",
		UUID:  technoUUID,
	}))

	id, ok := s.service.Resolve(s.ctx, "SNEAKY")
	s.True(ok)
	s.Equal(technoUUID, id.UUID)
}
