package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// CatalogRepository reads the lookup tables referenced by tickets and users.
type CatalogRepository interface {
	List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error)
	GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository builds the repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

var catalogTables = map[domain.CatalogKind]string{
	domain.CatalogCategory:    "categories",
	domain.CatalogCriticality: "criticalities",
	domain.CatalogLocation:    "locations",
	domain.CatalogState:       "ticket_states",
}

func catalogTable(kind domain.CatalogKind) (string, error) {
	table, ok := catalogTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown catalog kind %q", kind)
	}
	return table, nil
}

func (r *catalogRepository) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, `SELECT id, name, description FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CatalogEntry{}
	for rows.Next() {
		var entry domain.CatalogEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Description); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *catalogRepository) GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	var entry domain.CatalogEntry
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description FROM `+table+` WHERE id=$1`, id,
	).Scan(&entry.ID, &entry.Name, &entry.Description); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *catalogRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}
