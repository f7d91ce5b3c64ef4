package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/eligibility"
	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickup-games/internal/platform/keylock"
	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

var svcNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type sequenceIDs struct {
	next atomic.Int64
}

func (s *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("game-%d", s.next.Add(1)), nil
}

type countingRecorder struct {
	mu          sync.Mutex
	transitions []string
	outcomes    map[string]int
	conflicts   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: make(map[string]int)}
}

func (r *countingRecorder) ObserveTransition(from, to game.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, string(from)+"->"+string(to))
}

func (r *countingRecorder) ObserveRosterOutcome(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[operation+":"+outcome]++
}

func (r *countingRecorder) ObserveVersionConflict(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func testProfile(id string, gender profile.Gender) profile.PlayerProfile {
	return profile.PlayerProfile{
		UserID:           id,
		DisplayName:      id,
		Gender:           gender,
		GenderPreference: profile.GenderPreferenceAll,
		SportSkills:      []profile.SportSkill{{Sport: "football", SkillLevel: profile.SkillIntermediate}},
		IsPublicProfile:  true,
		OpenToInvites:    true,
	}
}

type gameServiceFixture struct {
	service  *GameService
	games    *memory.GameRepository
	profiles *memory.ProfileRepository
	recorder *countingRecorder
}

func newGameServiceFixture(t *testing.T, locker GameLocker, profiles ...profile.PlayerProfile) gameServiceFixture {
	t.Helper()

	if locker == nil {
		locker = keylock.New()
	}
	profileRepo := memory.NewProfileRepository(profiles)
	gameRepo := memory.NewGameRepository(profileRepo, nil)
	recorder := newCountingRecorder()

	service := NewGameService(gameRepo, profileRepo, eligibility.NewPolicy(), locker, &sequenceIDs{}, logging.NewNop(), GameServiceOptions{
		Recorder: recorder,
	})
	service.now = func() time.Time { return svcNow }

	return gameServiceFixture{
		service:  service,
		games:    gameRepo,
		profiles: profileRepo,
		recorder: recorder,
	}
}

func (f gameServiceFixture) createGame(t *testing.T, hostID string, mutate func(in *game.NewGameInput)) game.ScheduledGame {
	t.Helper()

	in := game.NewGameInput{
		Sport:             "football",
		Title:             "Sunday kickabout",
		Schedule:          game.Schedule{StartsAt: svcNow.Add(48 * time.Hour)},
		Location:          game.Location{Address: "Pitch 3", City: "Jakarta"},
		MinPlayers:        2,
		MaxPlayers:        4,
		IsPublic:          true,
		AllowJoinRequests: true,
	}
	if mutate != nil {
		mutate(&in)
	}

	g, err := f.service.CreateGame(context.Background(), CreateGameInput{HostUserID: hostID, Game: in})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func (f gameServiceFixture) join(t *testing.T, gameID, hostID, userID string) {
	t.Helper()

	ctx := context.Background()
	if _, err := f.service.RequestToJoin(ctx, gameID, userID, ""); err != nil {
		t.Fatalf("request to join %s: %v", userID, err)
	}
	if _, err := f.service.ResolveJoinRequest(ctx, ResolveJoinRequestInput{
		GameID:       gameID,
		RequesterID:  userID,
		Decision:     game.DecisionAccept,
		ActingUserID: hostID,
	}); err != nil {
		t.Fatalf("accept %s: %v", userID, err)
	}
}

func TestGameService_CreateGame(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil, testProfile("host", profile.GenderMale))
	g := f.createGame(t, "host", nil)

	if g.ID != "game-1" {
		t.Fatalf("unexpected game id: %s", g.ID)
	}
	if len(g.ShareCode) != shareCodeLength {
		t.Fatalf("unexpected share code %q", g.ShareCode)
	}
	if g.Version != 1 || g.Status != game.StatusScheduled {
		t.Fatalf("unexpected initial state: %s v%d", g.Status, g.Version)
	}

	byCode, err := f.service.GetGameByShareCode(context.Background(), g.ShareCode)
	if err != nil {
		t.Fatalf("get by share code: %v", err)
	}
	if byCode.ID != g.ID {
		t.Fatalf("share code resolved to %s", byCode.ID)
	}
	if len(f.recorder.transitions) != 1 || f.recorder.transitions[0] != "->scheduled" {
		t.Fatalf("unexpected transitions: %v", f.recorder.transitions)
	}
}

func TestGameService_CreateGame_Validation(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil, testProfile("host", profile.GenderMale))
	ctx := context.Background()

	if _, err := f.service.CreateGame(ctx, CreateGameInput{HostUserID: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing host, got %v", err)
	}
	if _, err := f.service.CreateGame(ctx, CreateGameInput{HostUserID: "ghost", Game: game.NewGameInput{}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown host, got %v", err)
	}

	_, err := f.service.CreateGame(ctx, CreateGameInput{
		HostUserID: "host",
		Game: game.NewGameInput{
			Sport:      "football",
			Title:      "Bad sizes",
			Schedule:   game.Schedule{StartsAt: svcNow.Add(time.Hour)},
			Location:   game.Location{Address: "Pitch 1"},
			MinPlayers: 5,
			MaxPlayers: 2,
		},
	})
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, game.ErrInvalidGame) {
		t.Fatalf("expected invalid input wrapping invalid game, got %v", err)
	}
	if ErrorKind(err) != "InvalidInput" {
		t.Fatalf("unexpected kind %q", ErrorKind(err))
	}
}

func TestGameService_ScenarioCapacity(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
		testProfile("p2", profile.GenderFemale),
		testProfile("p3", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.MinPlayers = 2
		in.MaxPlayers = 2
	})

	f.join(t, g.ID, "host", "p1")
	f.join(t, g.ID, "host", "p2")

	_, err := f.service.RequestToJoin(context.Background(), g.ID, "p3", "")
	if !errors.Is(err, ErrDeniedCapacityFull) {
		t.Fatalf("expected DeniedCapacityFull, got %v", err)
	}
	if ErrorKind(err) != "DeniedCapacityFull" || !IsDenial(err) {
		t.Fatalf("unexpected kind %q", ErrorKind(err))
	}

	stored, err := f.service.GetGame(context.Background(), g.ID, "host")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if stored.ConfirmedCount() != 2 || stored.HasPendingRequest("p3") {
		t.Fatalf("unexpected roster: %+v requests=%+v", stored.ConfirmedPlayers, stored.InviteRequests)
	}
	if f.recorder.outcomes["request_to_join:DeniedCapacityFull"] != 1 {
		t.Fatalf("expected denial to be recorded, got %v", f.recorder.outcomes)
	}
}

func TestGameService_ScenarioGenderRestricted(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderFemale),
		testProfile("m1", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.GenderRestriction = game.GenderRestrictionFemaleOnly
	})

	_, err := f.service.RequestToJoin(context.Background(), g.ID, "m1", "let me in")
	if !errors.Is(err, ErrDeniedGenderRestricted) {
		t.Fatalf("expected DeniedGenderRestricted, got %v", err)
	}

	stored, _, _ := f.games.GetByID(context.Background(), g.ID)
	if len(stored.InviteRequests) != 0 || stored.Version != 1 {
		t.Fatalf("denied request must not be queued: %+v v%d", stored.InviteRequests, stored.Version)
	}
}

func TestGameService_ScenarioCancel(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
	)
	g := f.createGame(t, "host", nil)
	ctx := context.Background()

	if _, err := f.service.CancelGame(ctx, g.ID, "host", " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected missing reason to be invalid, got %v", err)
	}
	if _, err := f.service.CancelGame(ctx, g.ID, "p1", "rain"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	cancelled, err := f.service.CancelGame(ctx, g.ID, "host", "rain")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != game.StatusCancelled || cancelled.CancellationReason != "rain" || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled game: %+v", cancelled)
	}

	if _, err := f.service.RequestToJoin(ctx, g.ID, "p1", ""); !errors.Is(err, ErrGameNotJoinable) {
		t.Fatalf("expected ErrGameNotJoinable, got %v", err)
	}
	if _, err := f.service.TransitionToOngoing(ctx, g.ID, "host"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestGameService_ScenarioCompleteWritesStats(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
		testProfile("p2", profile.GenderMale),
		testProfile("p3", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.HostJoins = true
	})
	for _, id := range []string{"p1", "p2", "p3"} {
		f.join(t, g.ID, "host", id)
	}
	ctx := context.Background()

	if _, err := f.service.TransitionToOngoing(ctx, g.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	completed, err := f.service.CompleteGame(ctx, CompleteGameInput{
		GameID:       g.ID,
		ActingUserID: "host",
		Result: game.ResultInput{
			Scores:        map[string]float64{"host": 2, "p1": 5, "p2": 1, "p3": 0},
			WinnerUserIDs: []string{"p1"},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != game.StatusCompleted || completed.Result == nil {
		t.Fatalf("unexpected completed game: %+v", completed)
	}

	for _, id := range []string{"host", "p1", "p2", "p3"} {
		p, _, _ := f.profiles.GetByID(ctx, id)
		if p.Stats.GamesPlayed != 1 {
			t.Fatalf("%s games played: got=%d want=1", id, p.Stats.GamesPlayed)
		}
		wantWon := 0
		if id == "p1" {
			wantWon = 1
		}
		if p.Stats.GamesWon != wantWon {
			t.Fatalf("%s games won: got=%d want=%d", id, p.Stats.GamesWon, wantWon)
		}
	}
	host, _, _ := f.profiles.GetByID(ctx, "host")
	if host.Stats.GamesHosted != 1 {
		t.Fatalf("host games hosted: got=%d want=1", host.Stats.GamesHosted)
	}

	if _, err := f.service.CompleteGame(ctx, CompleteGameInput{GameID: g.ID, ActingUserID: "host"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second completion to fail, got %v", err)
	}
	p1, _, _ := f.profiles.GetByID(ctx, "p1")
	if p1.Stats.GamesPlayed != 1 {
		t.Fatalf("stats must not be applied twice, got %d", p1.Stats.GamesPlayed)
	}
}

func TestGameService_LostRaceIsPersisted(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
		testProfile("p2", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.MinPlayers = 1
		in.MaxPlayers = 1
	})
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		if _, err := f.service.RequestToJoin(ctx, g.ID, id, ""); err != nil {
			t.Fatalf("request %s: %v", id, err)
		}
	}
	if _, err := f.service.ResolveJoinRequest(ctx, ResolveJoinRequestInput{GameID: g.ID, RequesterID: "p1", Decision: game.DecisionAccept, ActingUserID: "host"}); err != nil {
		t.Fatalf("accept p1: %v", err)
	}

	updated, err := f.service.ResolveJoinRequest(ctx, ResolveJoinRequestInput{GameID: g.ID, RequesterID: "p2", Decision: game.DecisionAccept, ActingUserID: "host"})
	if !errors.Is(err, ErrCapacityFilledSinceRequest) {
		t.Fatalf("expected ErrCapacityFilledSinceRequest, got %v", err)
	}
	if updated.ID != g.ID {
		t.Fatalf("expected saved game alongside the error")
	}

	stored, _, _ := f.games.GetByID(ctx, g.ID)
	var found bool
	for _, r := range stored.InviteRequests {
		if r.UserID == "p2" {
			found = true
			if r.Status != game.RequestRejected || r.RejectReason != game.RejectReasonCapacityFilled {
				t.Fatalf("unexpected p2 request: %+v", r)
			}
		}
	}
	if !found {
		t.Fatalf("p2 request missing from stored game")
	}
	if stored.ConfirmedCount() != 1 {
		t.Fatalf("capacity exceeded: %d", stored.ConfirmedCount())
	}
}

func TestGameService_ConcurrentAcceptsRespectCapacity(t *testing.T) {
	t.Parallel()

	const (
		maxPlayers = 3
		requesters = 12
	)

	profiles := []profile.PlayerProfile{testProfile("host", profile.GenderMale)}
	for i := 0; i < requesters; i++ {
		profiles = append(profiles, testProfile(fmt.Sprintf("p%d", i), profile.GenderMale))
	}
	f := newGameServiceFixture(t, nil, profiles...)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.MinPlayers = 1
		in.MaxPlayers = maxPlayers
	})
	ctx := context.Background()
	for i := 0; i < requesters; i++ {
		if _, err := f.service.RequestToJoin(ctx, g.ID, fmt.Sprintf("p%d", i), ""); err != nil {
			t.Fatalf("request p%d: %v", i, err)
		}
	}

	var accepted atomic.Int32
	var lost atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.service.ResolveJoinRequest(ctx, ResolveJoinRequestInput{
				GameID:       g.ID,
				RequesterID:  userID,
				Decision:     game.DecisionAccept,
				ActingUserID: "host",
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrCapacityFilledSinceRequest):
				lost.Add(1)
			default:
				t.Errorf("accept %s: %v", userID, err)
			}
		}(fmt.Sprintf("p%d", i))
	}
	wg.Wait()

	if accepted.Load() != maxPlayers || lost.Load() != requesters-maxPlayers {
		t.Fatalf("unexpected outcomes: accepted=%d lost=%d", accepted.Load(), lost.Load())
	}
	stored, _, _ := f.games.GetByID(ctx, g.ID)
	if stored.ConfirmedCount() != maxPlayers {
		t.Fatalf("confirmed count: got=%d want=%d", stored.ConfirmedCount(), maxPlayers)
	}
}

func TestGameService_IdempotentJoinRequest(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
	)
	g := f.createGame(t, "host", nil)
	ctx := context.Background()

	first, err := f.service.RequestToJoin(ctx, g.ID, "p1", "hi")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := f.service.RequestToJoin(ctx, g.ID, "p1", "hi again")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if len(second.InviteRequests) != 1 || second.Version != first.Version {
		t.Fatalf("repeat request changed the game: %+v v%d->v%d", second.InviteRequests, first.Version, second.Version)
	}
}

func TestGameService_WithdrawAndInviteFlow(t *testing.T) {
	t.Parallel()

	closed := testProfile("closed", profile.GenderMale)
	closed.OpenToInvites = false
	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
		testProfile("p2", profile.GenderMale),
		closed,
	)
	g := f.createGame(t, "host", nil)
	ctx := context.Background()

	if _, err := f.service.WithdrawJoinRequest(ctx, g.ID, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing request, got %v", err)
	}
	if _, err := f.service.RequestToJoin(ctx, g.ID, "p1", ""); err != nil {
		t.Fatalf("request: %v", err)
	}
	withdrawn, err := f.service.WithdrawJoinRequest(ctx, g.ID, "p1")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.HasPendingRequest("p1") {
		t.Fatalf("request still pending after withdraw")
	}

	if _, err := f.service.SendInvite(ctx, g.ID, "closed", "host"); !errors.Is(err, ErrDeniedNotOpenToInvites) {
		t.Fatalf("expected DeniedNotOpenToInvites, got %v", err)
	}
	if _, err := f.service.SendInvite(ctx, g.ID, "p2", "p1"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := f.service.SendInvite(ctx, g.ID, "p2", "host"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := f.service.RequestToJoin(ctx, g.ID, "p2", ""); !errors.Is(err, ErrPendingInviteExists) {
		t.Fatalf("expected ErrPendingInviteExists, got %v", err)
	}

	accepted, err := f.service.RespondToInvite(ctx, g.ID, "p2", game.DecisionAccept)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if !accepted.IsConfirmed("p2") {
		t.Fatalf("p2 not confirmed after accepting invite")
	}
	if _, err := f.service.RespondToInvite(ctx, g.ID, "p2", game.DecisionAccept); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for answered invite, got %v", err)
	}
	if _, err := f.service.RespondToInvite(ctx, g.ID, "p2", game.DecisionReject); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for reject on invite, got %v", err)
	}
}

func TestGameService_LeaveCoHostAndTransfer(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.HostJoins = true
	})
	f.join(t, g.ID, "host", "p1")
	ctx := context.Background()

	if _, err := f.service.LeaveGame(ctx, g.ID, "host"); !errors.Is(err, ErrHostCannotLeave) {
		t.Fatalf("expected ErrHostCannotLeave, got %v", err)
	}

	withCoHost, err := f.service.AddCoHost(ctx, g.ID, "p1", "host")
	if err != nil {
		t.Fatalf("add co-host: %v", err)
	}
	if !withCoHost.IsCoHost("p1") {
		t.Fatalf("p1 not a co-host")
	}
	again, err := f.service.AddCoHost(ctx, g.ID, "p1", "host")
	if err != nil || again.Version != withCoHost.Version {
		t.Fatalf("repeat add co-host should be a no-op: v%d->v%d err=%v", withCoHost.Version, again.Version, err)
	}

	transferred, err := f.service.TransferHost(ctx, g.ID, "p1", "host")
	if err != nil {
		t.Fatalf("transfer host: %v", err)
	}
	if transferred.HostUserID != "p1" || transferred.IsCoHost("p1") {
		t.Fatalf("unexpected hosts after transfer: host=%s co=%v", transferred.HostUserID, transferred.CoHostUserIDs)
	}
	same, err := f.service.TransferHost(ctx, g.ID, "p1", "p1")
	if err != nil || same.Version != transferred.Version {
		t.Fatalf("transfer to current host should be a no-op: err=%v", err)
	}

	left, err := f.service.LeaveGame(ctx, g.ID, "host")
	if err != nil {
		t.Fatalf("former host leave: %v", err)
	}
	if left.IsConfirmed("host") {
		t.Fatalf("former host still confirmed")
	}
}

func TestGameService_UpdateSettings(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
		testProfile("p2", profile.GenderMale),
	)
	g := f.createGame(t, "host", nil)
	f.join(t, g.ID, "host", "p1")
	f.join(t, g.ID, "host", "p2")
	ctx := context.Background()

	one := 1
	if _, err := f.service.UpdateGameSettings(ctx, g.ID, "host", game.SettingsUpdate{MinPlayers: &one, MaxPlayers: &one}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected shrinking below roster to fail, got %v", err)
	}

	female := game.GenderRestrictionFemaleOnly
	updated, err := f.service.UpdateGameSettings(ctx, g.ID, "host", game.SettingsUpdate{GenderRestriction: &female})
	if err != nil {
		t.Fatalf("update restriction: %v", err)
	}
	if updated.ConfirmedCount() != 2 {
		t.Fatalf("restriction edit removed players: %d", updated.ConfirmedCount())
	}
}

func TestGameService_PrivateGameVisibility(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.IsPublic = false
	})
	ctx := context.Background()

	if _, err := f.service.GetGame(ctx, g.ID, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected private game hidden from outsider, got %v", err)
	}
	if _, err := f.service.GetGame(ctx, g.ID, "host"); err != nil {
		t.Fatalf("host should see private game: %v", err)
	}
	if _, err := f.service.GetGameByShareCode(ctx, g.ShareCode); err != nil {
		t.Fatalf("share code should reveal private game: %v", err)
	}
	if _, err := f.service.GetGameByShareCode(ctx, "NOPE2345"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown share code, got %v", err)
	}
}

func TestGameService_RecordPaymentOutcome(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.Payment = game.Payment{Terms: game.PaymentPrepaid, CostPerPlayer: 50000, Currency: "idr"}
	})
	f.join(t, g.ID, "host", "p1")
	ctx := context.Background()

	failed, err := f.service.RecordPaymentOutcome(ctx, PaymentOutcomeInput{GameID: g.ID, UserID: "p1", Amount: 50000, Outcome: PaymentOutcomeFailure})
	if err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if failed.IsPaid("p1") {
		t.Fatalf("failed charge must not mark player paid")
	}

	paid, err := f.service.RecordPaymentOutcome(ctx, PaymentOutcomeInput{GameID: g.ID, UserID: "p1", Amount: 50000, Outcome: PaymentOutcomeSuccess, Reference: "txn-1"})
	if err != nil {
		t.Fatalf("record success: %v", err)
	}
	repeat, err := f.service.RecordPaymentOutcome(ctx, PaymentOutcomeInput{GameID: g.ID, UserID: "p1", Amount: 50000, Outcome: PaymentOutcomeSuccess, Reference: "txn-1"})
	if err != nil {
		t.Fatalf("repeat success: %v", err)
	}
	if len(repeat.PaidPlayers) != 1 || repeat.Version != paid.Version {
		t.Fatalf("payment not idempotent: %+v", repeat.PaidPlayers)
	}

	if _, err := f.service.RecordPaymentOutcome(ctx, PaymentOutcomeInput{GameID: g.ID, UserID: "host", Amount: 50000, Outcome: PaymentOutcomeSuccess}); !errors.Is(err, ErrNotParticipating) {
		t.Fatalf("expected ErrNotParticipating, got %v", err)
	}
	if _, err := f.service.RecordPaymentOutcome(ctx, PaymentOutcomeInput{GameID: g.ID, UserID: "p1", Amount: 1, Outcome: "maybe"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown outcome, got %v", err)
	}
}

func TestGameService_StartIfDue(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil, testProfile("host", profile.GenderMale))
	g := f.createGame(t, "host", nil)
	ctx := context.Background()

	started, err := f.service.StartIfDue(ctx, g.ID)
	if err != nil || started {
		t.Fatalf("game should not start early: started=%v err=%v", started, err)
	}

	f.service.now = func() time.Time { return g.Schedule.StartsAt.Add(time.Minute) }
	started, err = f.service.StartIfDue(ctx, g.ID)
	if err != nil || !started {
		t.Fatalf("expected due game to start: started=%v err=%v", started, err)
	}
	started, err = f.service.StartIfDue(ctx, g.ID)
	if err != nil || started {
		t.Fatalf("second start should be a no-op: started=%v err=%v", started, err)
	}
}

func TestGameService_StartDueGames(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil, testProfile("host", profile.GenderMale))
	early := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.Schedule.StartsAt = svcNow.Add(time.Hour)
	})
	late := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.Schedule.StartsAt = svcNow.Add(72 * time.Hour)
	})
	cancelled := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.Schedule.StartsAt = svcNow.Add(30 * time.Minute)
	})
	ctx := context.Background()
	if _, err := f.service.CancelGame(ctx, cancelled.ID, "host", "pitch closed"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	f.service.now = func() time.Time { return svcNow.Add(2 * time.Hour) }
	result, err := f.service.StartDueGames(ctx, StartDueGamesInput{MaxWorkers: 2})
	if err != nil {
		t.Fatalf("start due games: %v", err)
	}
	if result.Candidates != 1 || result.StartedCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}

	gotEarly, _, _ := f.games.GetByID(ctx, early.ID)
	gotLate, _, _ := f.games.GetByID(ctx, late.ID)
	if gotEarly.Status != game.StatusOngoing || gotLate.Status != game.StatusScheduled {
		t.Fatalf("unexpected statuses: early=%s late=%s", gotEarly.Status, gotLate.Status)
	}
}
