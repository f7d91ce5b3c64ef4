package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	idgen "github.com/riskibarqy/pickup-games/internal/platform/id"
	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

const (
	defaultMaxMutationAttempts = 3
	maxShareCodeAttempts       = 3
)

type CreateGameInput struct {
	HostUserID string
	Game       game.NewGameInput
}

type ResolveJoinRequestInput struct {
	GameID       string
	RequesterID  string
	Decision     game.Decision
	ActingUserID string
}

type CompleteGameInput struct {
	GameID       string
	ActingUserID string
	Result       game.ResultInput
}

type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

// PaymentOutcomeInput is a charge report from the external ledger.
type PaymentOutcomeInput struct {
	GameID    string
	UserID    string
	Amount    int64
	Outcome   PaymentOutcome
	Reference string
}

type GameServiceOptions struct {
	MaxMutationAttempts int
	Recorder            MutationRecorder
	StartScheduler      GameStartScheduler
}

// GameService applies lifecycle transitions as one atomic read-modify-write per game.
type GameService struct {
	games       game.Repository
	profiles    profile.Repository
	policy      game.Policy
	locker      GameLocker
	idGen       idgen.Generator
	recorder    MutationRecorder
	starter     GameStartScheduler
	logger      *logging.Logger
	maxAttempts int
	now         func() time.Time
}

func NewGameService(
	games game.Repository,
	profiles profile.Repository,
	policy game.Policy,
	locker GameLocker,
	idGen idgen.Generator,
	logger *logging.Logger,
	opts GameServiceOptions,
) *GameService {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.MaxMutationAttempts < 1 {
		opts.MaxMutationAttempts = defaultMaxMutationAttempts
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}

	return &GameService{
		games:       games,
		profiles:    profiles,
		policy:      policy,
		locker:      locker,
		idGen:       idGen,
		recorder:    opts.Recorder,
		starter:     opts.StartScheduler,
		logger:      logger,
		maxAttempts: opts.MaxMutationAttempts,
		now:         time.Now,
	}
}

func (s *GameService) CreateGame(ctx context.Context, input CreateGameInput) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.CreateGame")
	defer span.End()

	input.HostUserID = strings.TrimSpace(input.HostUserID)
	if input.HostUserID == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: host user id is required", ErrInvalidInput)
	}

	host, err := s.loadProfile(ctx, input.HostUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	gameID, err := s.idGen.NewID()
	if err != nil {
		return game.ScheduledGame{}, fmt.Errorf("generate game id: %w", err)
	}

	now := s.now().UTC()
	var created game.ScheduledGame
	for attempt := 1; ; attempt++ {
		shareCode, err := generateShareCode(shareCodeLength)
		if err != nil {
			return game.ScheduledGame{}, fmt.Errorf("generate share code: %w", err)
		}
		created, err = game.New(gameID, shareCode, host, input.Game, now)
		if err != nil {
			return game.ScheduledGame{}, translateGameError(err)
		}

		err = s.games.Create(ctx, created)
		if err == nil {
			break
		}
		if errors.Is(err, game.ErrShareCodeTaken) && attempt < maxShareCodeAttempts {
			continue
		}
		return game.ScheduledGame{}, fmt.Errorf("%w: create game: %v", ErrStorageUnavailable, err)
	}

	s.recorder.ObserveTransition("", game.StatusScheduled)
	s.scheduleStart(ctx, created)
	return created, nil
}

// GetGame returns a game visible to viewerID. Private games are hidden from non-participants.
func (s *GameService) GetGame(ctx context.Context, gameID, viewerID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetGame")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	if !g.CanView(strings.TrimSpace(viewerID)) {
		return game.ScheduledGame{}, fmt.Errorf("%w: game not found: %s", ErrNotFound, gameID)
	}
	return g, nil
}

// GetGameByShareCode is the only lookup that reveals a private game to outsiders.
func (s *GameService) GetGameByShareCode(ctx context.Context, shareCode string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.GetGameByShareCode")
	defer span.End()

	shareCode = strings.ToUpper(strings.TrimSpace(shareCode))
	if shareCode == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: share code is required", ErrInvalidInput)
	}

	g, exists, err := s.games.GetByShareCode(ctx, shareCode)
	if err != nil {
		return game.ScheduledGame{}, fmt.Errorf("%w: get game by share code: %v", ErrStorageUnavailable, err)
	}
	if !exists {
		return game.ScheduledGame{}, fmt.Errorf("%w: game not found for share code", ErrNotFound)
	}
	return g, nil
}

func (s *GameService) UpdateGameSettings(ctx context.Context, gameID, actingUserID string, update game.SettingsUpdate) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.UpdateGameSettings")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	updated, err := s.mutate(ctx, "update_settings", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.UpdateSettings(update, actingUserID, s.now().UTC())
	})
	if err != nil {
		return game.ScheduledGame{}, err
	}
	if update.Schedule != nil {
		s.scheduleStart(ctx, updated)
	}
	return updated, nil
}

func (s *GameService) RequestToJoin(ctx context.Context, gameID, userID, message string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RequestToJoin")
	defer span.End()

	gameID, userID, err := requireIDs(gameID, userID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	player, err := s.loadProfile(ctx, userID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "request_to_join", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		ok, err := g.RequestToJoin(s.policy, player, message, s.now().UTC())
		return changed(ok), err
	})
}

func (s *GameService) WithdrawJoinRequest(ctx context.Context, gameID, userID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.WithdrawJoinRequest")
	defer span.End()

	gameID, userID, err := requireIDs(gameID, userID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "withdraw_join_request", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.WithdrawJoinRequest(userID, s.now().UTC())
	})
}

// ResolveJoinRequest returns ErrCapacityFilledSinceRequest together with the saved game
// when the slot was taken after the request was queued.
func (s *GameService) ResolveJoinRequest(ctx context.Context, input ResolveJoinRequestInput) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ResolveJoinRequest")
	defer span.End()

	gameID, actingUserID, err := requireIDs(input.GameID, input.ActingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	requesterID := strings.TrimSpace(input.RequesterID)
	if requesterID == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: requester id is required", ErrInvalidInput)
	}
	if input.Decision != game.DecisionAccept && input.Decision != game.DecisionReject {
		return game.ScheduledGame{}, fmt.Errorf("%w: decision must be accept or reject", ErrInvalidInput)
	}

	requester, err := s.loadProfile(ctx, requesterID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "resolve_join_request", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.ResolveJoinRequest(s.policy, requester, input.Decision, actingUserID, s.now().UTC())
	})
}

func (s *GameService) SendInvite(ctx context.Context, gameID, targetUserID, actingUserID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.SendInvite")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: target user id is required", ErrInvalidInput)
	}

	target, err := s.loadProfile(ctx, targetUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "send_invite", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		ok, err := g.SendInvite(s.policy, target, actingUserID, s.now().UTC())
		return changed(ok), err
	})
}

func (s *GameService) RespondToInvite(ctx context.Context, gameID, userID string, decision game.Decision) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RespondToInvite")
	defer span.End()

	gameID, userID, err := requireIDs(gameID, userID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	if decision != game.DecisionAccept && decision != game.DecisionDecline {
		return game.ScheduledGame{}, fmt.Errorf("%w: decision must be accept or decline", ErrInvalidInput)
	}

	player, err := s.loadProfile(ctx, userID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "respond_to_invite", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.RespondToInvite(s.policy, player, decision, s.now().UTC())
	})
}

func (s *GameService) LeaveGame(ctx context.Context, gameID, userID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.LeaveGame")
	defer span.End()

	gameID, userID, err := requireIDs(gameID, userID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "leave_game", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.Leave(userID, s.now().UTC())
	})
}

func (s *GameService) AddCoHost(ctx context.Context, gameID, coHostID, actingUserID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.AddCoHost")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	coHostID = strings.TrimSpace(coHostID)
	if coHostID == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: co-host user id is required", ErrInvalidInput)
	}

	return s.mutate(ctx, "add_co_host", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		ok, err := g.AddCoHost(coHostID, actingUserID, s.now().UTC())
		return changed(ok), err
	})
}

func (s *GameService) RemoveCoHost(ctx context.Context, gameID, coHostID, actingUserID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RemoveCoHost")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	coHostID = strings.TrimSpace(coHostID)

	return s.mutate(ctx, "remove_co_host", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		ok, err := g.RemoveCoHost(coHostID, actingUserID, s.now().UTC())
		return changed(ok), err
	})
}

func (s *GameService) TransferHost(ctx context.Context, gameID, newHostID, actingUserID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.TransferHost")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	newHostID = strings.TrimSpace(newHostID)
	if newHostID == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: new host user id is required", ErrInvalidInput)
	}

	return s.mutate(ctx, "transfer_host", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		previous := g.HostUserID
		err := g.TransferHost(newHostID, actingUserID, s.now().UTC())
		return changed(g.HostUserID != previous), err
	})
}

// TransitionToOngoing is the host-triggered start.
func (s *GameService) TransitionToOngoing(ctx context.Context, gameID, actingUserID string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.TransitionToOngoing")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "start_game", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.Start(actingUserID, s.now().UTC())
	})
}

// StartIfDue is the automatic start used by the sweeper and the delayed start callback.
func (s *GameService) StartIfDue(ctx context.Context, gameID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.StartIfDue")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return false, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	var started bool
	_, err := s.mutate(ctx, "auto_start_game", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		ok, err := g.StartIfDue(s.now().UTC())
		started = ok
		return changed(ok), err
	})
	if err != nil {
		return false, err
	}
	return started, nil
}

func (s *GameService) CancelGame(ctx context.Context, gameID, actingUserID, reason string) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.CancelGame")
	defer span.End()

	gameID, actingUserID, err := requireIDs(gameID, actingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}
	if strings.TrimSpace(reason) == "" {
		return game.ScheduledGame{}, fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}

	return s.mutate(ctx, "cancel_game", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		return changed(true), g.Cancel(actingUserID, reason, s.now().UTC())
	})
}

// CompleteGame records the result and writes stats back to every confirmed player's profile
// in the same save as the game.
func (s *GameService) CompleteGame(ctx context.Context, input CompleteGameInput) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.CompleteGame")
	defer span.End()

	gameID, actingUserID, err := requireIDs(input.GameID, input.ActingUserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	return s.mutate(ctx, "complete_game", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		deltas, err := g.Complete(actingUserID, input.Result, s.now().UTC())
		return mutationOutcome{changed: true, stats: deltas}, err
	})
}

// RecordPaymentOutcome stores a paid entry for successful charges only. Failures are logged and ignored.
func (s *GameService) RecordPaymentOutcome(ctx context.Context, input PaymentOutcomeInput) (game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RecordPaymentOutcome")
	defer span.End()

	gameID, userID, err := requireIDs(input.GameID, input.UserID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	switch input.Outcome {
	case PaymentOutcomeSuccess:
	case PaymentOutcomeFailure:
		s.logger.InfoContext(ctx, "payment failure reported",
			"game_id", gameID,
			"user_id", userID,
			"amount", input.Amount,
			"reference", input.Reference,
		)
		return s.loadGame(ctx, gameID)
	default:
		return game.ScheduledGame{}, fmt.Errorf("%w: outcome must be success or failure", ErrInvalidInput)
	}

	return s.mutate(ctx, "record_payment", gameID, func(g *game.ScheduledGame) (mutationOutcome, error) {
		ok, err := g.RecordPayment(userID, input.Amount, input.Reference, s.now().UTC())
		return changed(ok), err
	})
}

type mutationOutcome struct {
	changed bool
	stats   []profile.StatsDelta
}

func changed(ok bool) mutationOutcome {
	return mutationOutcome{changed: ok}
}

type mutation func(g *game.ScheduledGame) (mutationOutcome, error)

// mutate retries fn from a fresh read on version conflicts, up to maxAttempts.
func (s *GameService) mutate(ctx context.Context, operation, gameID string, fn mutation) (game.ScheduledGame, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		g, err := s.mutateOnce(ctx, operation, gameID, fn)
		if !errors.Is(err, game.ErrVersionConflict) {
			s.recordOutcome(operation, err)
			return g, err
		}

		lastErr = err
		s.recorder.ObserveVersionConflict(operation)
		s.logger.DebugContext(ctx, "game version conflict, retrying",
			"operation", operation,
			"game_id", gameID,
			"attempt", attempt,
		)
	}

	err := fmt.Errorf("%w: %s on game %s gave up after %d attempts: %w", ErrStorageUnavailable, operation, gameID, s.maxAttempts, lastErr)
	s.recordOutcome(operation, err)
	return game.ScheduledGame{}, err
}

func (s *GameService) mutateOnce(ctx context.Context, operation, gameID string, fn mutation) (game.ScheduledGame, error) {
	unlock, err := s.locker.Lock(ctx, gameID)
	if err != nil {
		return game.ScheduledGame{}, fmt.Errorf("%w: lock game %s: %v", ErrStorageUnavailable, gameID, err)
	}
	defer unlock()

	current, err := s.loadGame(ctx, gameID)
	if err != nil {
		return game.ScheduledGame{}, err
	}

	next := current.Clone()
	outcome, opErr := fn(&next)
	if opErr != nil && !game.KeepsChanges(opErr) {
		return current, translateGameError(opErr)
	}
	if !outcome.changed {
		return current, nil
	}

	next.Version = current.Version + 1
	if len(outcome.stats) > 0 || next.Status == game.StatusCompleted {
		err = s.games.SaveCompletion(ctx, next, current.Version, outcome.stats)
	} else {
		err = s.games.Save(ctx, next, current.Version)
	}
	if err != nil {
		if errors.Is(err, game.ErrVersionConflict) {
			return game.ScheduledGame{}, err
		}
		return game.ScheduledGame{}, fmt.Errorf("%w: save game %s: %v", ErrStorageUnavailable, gameID, err)
	}

	if current.Status != next.Status {
		s.recorder.ObserveTransition(current.Status, next.Status)
		s.logger.InfoContext(ctx, "game status changed",
			"operation", operation,
			"game_id", gameID,
			"from", string(current.Status),
			"to", string(next.Status),
		)
	}
	return next, translateGameError(opErr)
}

func (s *GameService) recordOutcome(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
	}
	s.recorder.ObserveRosterOutcome(operation, outcome)
}

func (s *GameService) loadGame(ctx context.Context, gameID string) (game.ScheduledGame, error) {
	g, exists, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return game.ScheduledGame{}, fmt.Errorf("%w: get game %s: %v", ErrStorageUnavailable, gameID, err)
	}
	if !exists {
		return game.ScheduledGame{}, fmt.Errorf("%w: game not found: %s", ErrNotFound, gameID)
	}
	return g, nil
}

func (s *GameService) loadProfile(ctx context.Context, userID string) (profile.PlayerProfile, error) {
	p, exists, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("%w: get profile %s: %v", ErrStorageUnavailable, userID, err)
	}
	if !exists {
		return profile.PlayerProfile{}, fmt.Errorf("%w: player profile not found: %s", ErrNotFound, userID)
	}
	return p, nil
}

func (s *GameService) scheduleStart(ctx context.Context, g game.ScheduledGame) {
	if s.starter == nil || g.Status != game.StatusScheduled {
		return
	}
	if err := s.starter.ScheduleStart(ctx, g.ID, g.Schedule.StartsAt); err != nil {
		s.logger.WarnContext(ctx, "schedule game start failed",
			"game_id", g.ID,
			"starts_at", g.Schedule.StartsAt,
			"error", err,
		)
	}
}

func requireIDs(gameID, userID string) (string, string, error) {
	gameID = strings.TrimSpace(gameID)
	userID = strings.TrimSpace(userID)
	if gameID == "" {
		return "", "", fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if userID == "" {
		return "", "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return gameID, userID, nil
}

func translateGameError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, game.ErrInvalidGame):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, game.ErrJoinRequestNotFound), errors.Is(err, game.ErrInviteNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return err
	}
}
