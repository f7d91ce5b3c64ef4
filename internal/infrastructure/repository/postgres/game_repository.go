package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	qb "github.com/riskibarqy/pickup-games/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.ScheduledGame, bool, error) {
	return r.getOne(ctx, "get game", qb.Eq("id", gameID))
}

func (r *GameRepository) GetByShareCode(ctx context.Context, shareCode string) (game.ScheduledGame, bool, error) {
	return r.getOne(ctx, "get game by share code", qb.Eq("share_code", shareCode))
}

func (r *GameRepository) getOne(ctx context.Context, op string, cond qb.Condition) (game.ScheduledGame, bool, error) {
	query, args, err := gameBaseSelectBuilder().Where(cond).ToSQL()
	if err != nil {
		return game.ScheduledGame{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.ScheduledGame{}, false, nil
		}
		return game.ScheduledGame{}, false, fmt.Errorf("%s: %w", op, err)
	}

	g, err := gameFromRow(row)
	if err != nil {
		return game.ScheduledGame{}, false, err
	}
	return g, true, nil
}

func (r *GameRepository) Create(ctx context.Context, g game.ScheduledGame) error {
	row, err := gameToRow(g)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("scheduled_games", row, "")
	if err != nil {
		return fmt.Errorf("build insert game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, shareCodeConstraint) {
			return fmt.Errorf("%w: %s", game.ErrShareCodeTaken, g.ShareCode)
		}
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *GameRepository) Save(ctx context.Context, g game.ScheduledGame, expectedVersion int64) error {
	return saveGame(ctx, r.db, g, expectedVersion)
}

// SaveCompletion commits the completed game and every player's stats in one transaction.
func (r *GameRepository) SaveCompletion(ctx context.Context, g game.ScheduledGame, expectedVersion int64, deltas []profile.StatsDelta) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save completion: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := saveGame(ctx, tx, g, expectedVersion); err != nil {
		return err
	}
	for _, delta := range deltas {
		if err := applyStatsDelta(ctx, tx, delta); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save completion: %w", err)
	}
	return nil
}

func (r *GameRepository) ListDiscoverable(ctx context.Context, filter game.DiscoveryFilter) ([]game.ScheduledGame, error) {
	conds := []qb.Condition{
		qb.Eq("status", string(game.StatusScheduled)),
		qb.Eq("is_public", true),
	}
	if sport := profile.NormalizeSport(filter.Sport); sport != "" {
		conds = append(conds, qb.Eq("sport", sport))
	}
	if filter.City != "" {
		conds = append(conds, qb.ContainsFold("city", filter.City))
	}
	if filter.StartsFrom != nil {
		conds = append(conds, qb.Expr("starts_at >= ?", *filter.StartsFrom))
	}
	if filter.StartsTo != nil {
		conds = append(conds, qb.Expr("starts_at <= ?", *filter.StartsTo))
	}
	if c := filter.After; c != nil {
		conds = append(conds, qb.Expr("(starts_at, id) > (?, ?)", c.StartsAt, c.ID))
	}

	query, args, err := gameBaseSelectBuilder().
		Where(conds...).
		OrderBy("starts_at", "id").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list discoverable games query: %w", err)
	}
	return r.list(ctx, "list discoverable games", query, args)
}

func (r *GameRepository) ListDueToStart(ctx context.Context, now time.Time, limit int) ([]game.ScheduledGame, error) {
	query, args, err := gameBaseSelectBuilder().
		Where(
			qb.Eq("status", string(game.StatusScheduled)),
			qb.Expr("starts_at <= ?", now),
		).
		OrderBy("starts_at", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list due games query: %w", err)
	}
	return r.list(ctx, "list due games", query, args)
}

func (r *GameRepository) list(ctx context.Context, op, query string, args []any) ([]game.ScheduledGame, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]game.ScheduledGame, 0, len(rows))
	for _, row := range rows {
		g, err := gameFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// saveGame is a compare-and-swap on version. Zero affected rows means someone else wrote first.
func saveGame(ctx context.Context, exec sqlx.ExecerContext, g game.ScheduledGame, expectedVersion int64) error {
	row, err := gameToRow(g)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("scheduled_games").
		Set("title", row.Title).
		Set("description", row.Description).
		Set("host_user_id", row.HostUserID).
		Set("co_host_user_ids", row.CoHostUserIDs).
		Set("starts_at", row.StartsAt).
		Set("ends_at", row.EndsAt).
		Set("arena_id", row.ArenaID).
		Set("address", row.Address).
		Set("city", row.City).
		Set("min_players", row.MinPlayers).
		Set("max_players", row.MaxPlayers).
		Set("confirmed_players", row.ConfirmedPlayers).
		Set("invite_requests", row.InviteRequests).
		Set("sent_invites", row.SentInvites).
		Set("paid_players", row.PaidPlayers).
		Set("is_public", row.IsPublic).
		Set("allow_join_requests", row.AllowJoinRequests).
		Set("gender_restriction", row.GenderRestriction).
		Set("skill_level_required", row.SkillLevelRequired).
		Set("status", row.Status).
		Set("started_at", row.StartedAt).
		Set("completed_at", row.CompletedAt).
		Set("cancelled_at", row.CancelledAt).
		Set("cancellation_reason", row.CancellationReason).
		Set("result", row.Result).
		Set("updated_at", row.UpdatedAt).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("id", g.ID),
			qb.Eq("version", expectedVersion),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save game query: %w", err)
	}

	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected save game: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: game %s expected version %d", game.ErrVersionConflict, g.ID, expectedVersion)
	}
	return nil
}

func gameBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("scheduled_games")
}
