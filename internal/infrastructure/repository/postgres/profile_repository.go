package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	qb "github.com/riskibarqy/pickup-games/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (profile.PlayerProfile, bool, error) {
	query, args, err := profileBaseSelectBuilder().
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return profile.PlayerProfile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.PlayerProfile{}, false, nil
		}
		return profile.PlayerProfile{}, false, fmt.Errorf("get profile: %w", err)
	}

	p, err := profileFromRow(row)
	if err != nil {
		return profile.PlayerProfile{}, false, err
	}
	return p, true, nil
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, userIDs []string) ([]profile.PlayerProfile, error) {
	if len(userIDs) == 0 {
		return []profile.PlayerProfile{}, nil
	}
	ids := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id)
	}

	query, args, err := profileBaseSelectBuilder().
		Where(qb.In("user_id", ids)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list profiles query: %w", err)
	}
	return r.list(ctx, "list profiles", query, args)
}

// Upsert never touches the stat columns of an existing row; those belong to result recording.
func (r *ProfileRepository) Upsert(ctx context.Context, p profile.PlayerProfile) error {
	row, err := profileToRow(p)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("player_profiles", row, `ON CONFLICT (user_id)
DO UPDATE SET
    display_name = EXCLUDED.display_name,
    gender = EXCLUDED.gender,
    city = EXCLUDED.city,
    sport_skills = EXCLUDED.sport_skills,
    availability = EXCLUDED.availability,
    is_public_profile = EXCLUDED.is_public_profile,
    looking_for_players = EXCLUDED.looking_for_players,
    open_to_invites = EXCLUDED.open_to_invites,
    gender_preference = EXCLUDED.gender_preference,
    last_active_at = EXCLUDED.last_active_at,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build profile upsert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Search(ctx context.Context, filter profile.SearchFilter) (profile.SearchPage, error) {
	filter = filter.Normalize()
	conds := searchConditions(filter)

	countQuery, countArgs, err := qb.Select("COUNT(*)").
		From("player_profiles").
		Where(conds...).
		ToSQL()
	if err != nil {
		return profile.SearchPage{}, fmt.Errorf("build count profiles query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return profile.SearchPage{}, fmt.Errorf("count profiles: %w", err)
	}

	query, args, err := profileBaseSelectBuilder().
		Where(conds...).
		OrderBy("rating DESC", "last_active_at DESC", "user_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		ToSQL()
	if err != nil {
		return profile.SearchPage{}, fmt.Errorf("build search profiles query: %w", err)
	}
	items, err := r.list(ctx, "search profiles", query, args)
	if err != nil {
		return profile.SearchPage{}, err
	}

	return profile.SearchPage{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// searchConditions renders profile.SearchFilter.Matches as SQL.
func searchConditions(filter profile.SearchFilter) []qb.Condition {
	conds := []qb.Condition{qb.Eq("is_public_profile", true)}
	if len(filter.ExcludeUserIDs) > 0 {
		conds = append(conds, qb.Expr("NOT (user_id = ANY(?))", pq.StringArray(filter.ExcludeUserIDs)))
	}
	if filter.Sport != "" {
		conds = append(conds, qb.Expr(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(sport_skills) s WHERE s->>'sport' = ? AND (s->>'rank')::int >= ?)",
			filter.Sport, filter.MinSkill.Rank(),
		))
	}
	if filter.Gender != "" {
		conds = append(conds, qb.Eq("gender", string(filter.Gender)))
	}
	if filter.City != "" {
		conds = append(conds, qb.ContainsFold("city", filter.City))
	}
	if filter.LookingForPlayers != nil {
		conds = append(conds, qb.Eq("looking_for_players", *filter.LookingForPlayers))
	}
	if filter.OpenToInvites != nil {
		conds = append(conds, qb.Eq("open_to_invites", *filter.OpenToInvites))
	}
	if filter.Name != "" {
		conds = append(conds, qb.ContainsFold("display_name", filter.Name))
	}
	return conds
}

func (r *ProfileRepository) list(ctx context.Context, op, query string, args []any) ([]profile.PlayerProfile, error) {
	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]profile.PlayerProfile, 0, len(rows))
	for _, row := range rows {
		p, err := profileFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// applyStatsDelta locks the profile row and folds delta in with profile.Stats.Apply.
func applyStatsDelta(ctx context.Context, tx *sqlx.Tx, delta profile.StatsDelta) error {
	query, args, err := profileBaseSelectBuilder().
		Where(qb.Eq("user_id", delta.UserID)).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock profile query: %w", err)
	}

	var row profileTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("lock profile %s: %w", delta.UserID, err)
	}

	stats := profile.Stats{
		GamesPlayed:  row.GamesPlayed,
		GamesWon:     row.GamesWon,
		GamesHosted:  row.GamesHosted,
		TotalScore:   row.TotalScore,
		AverageScore: row.AverageScore,
		Rating:       row.Rating,
	}.Apply(delta)

	update, updateArgs, err := qb.Update("player_profiles").
		Set("games_played", stats.GamesPlayed).
		Set("games_won", stats.GamesWon).
		Set("games_hosted", stats.GamesHosted).
		Set("total_score", stats.TotalScore).
		Set("average_score", stats.AverageScore).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("user_id", delta.UserID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update stats query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, update, updateArgs...); err != nil {
		return fmt.Errorf("update stats of %s: %w", delta.UserID, err)
	}
	return nil
}

func profileBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("player_profiles")
}
