package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/domain/catalog"
	"github.com/gamekey-storefront/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// GameRepository reads catalog rows from PostgreSQL. It implements
// catalog.PriceResolver; the checkout engine never writes to the catalog.
type GameRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewGameRepository creates a new PostgreSQL game repository
func NewGameRepository(logger *slog.Logger, db *persistence.PostgresDB) *GameRepository {
	return &GameRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByAppID retrieves a single catalog row
func (r *GameRepository) GetByAppID(ctx context.Context, appID int64) (*catalog.Game, error) {
	query := `
		SELECT app_id, title, list_price, COALESCE(discount_price, 0), created_at
		FROM games
		WHERE app_id = $1
	`

	var g catalog.Game
	err := r.querier.QueryRow(ctx, query, appID).Scan(
		&g.AppID,
		&g.Title,
		&g.ListPrice,
		&g.DiscountPrice,
		&g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrGameNotFound{AppID: appID}
		}
		r.logger.Error("Failed to get game", "app_id", appID, "error", err)
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &g, nil
}

// PricesOf resolves the payable price for every requested game in one query.
// Any id missing from the catalog fails the whole lookup with ErrGameNotFound.
func (r *GameRepository) PricesOf(ctx context.Context, appIDs []int64) (map[int64]int64, error) {
	if len(appIDs) == 0 {
		return map[int64]int64{}, nil
	}

	query := `
		SELECT app_id, list_price, COALESCE(discount_price, 0)
		FROM games
		WHERE app_id = ANY($1)
	`

	rows, err := r.querier.Query(ctx, query, appIDs)
	if err != nil {
		r.logger.Error("Failed to resolve game prices", "error", err)
		return nil, fmt.Errorf("failed to resolve game prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[int64]int64, len(appIDs))
	for rows.Next() {
		var g catalog.Game
		if err := rows.Scan(&g.AppID, &g.ListPrice, &g.DiscountPrice); err != nil {
			return nil, fmt.Errorf("failed to scan game price: %w", err)
		}
		prices[g.AppID] = g.PayablePrice()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game prices: %w", err)
	}

	for _, appID := range appIDs {
		if _, ok := prices[appID]; !ok {
			return nil, catalog.ErrGameNotFound{AppID: appID}
		}
	}

	return prices, nil
}
