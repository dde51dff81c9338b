package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-sucursales/internal/domain"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/Inventario-sucursales/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación del puerto BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de persistencia para sucursales.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// Create persiste una nueva sucursal; el índice único sobre upper(code) la vuelve ErrDuplicate.
func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	query := `
		INSERT INTO branches (id, code, name, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, b.ID, b.Code, b.Name, b.Address, b.Active, b.CreatedAt, b.UpdatedAt)
	return mapError("insert branch", err)
}

// GetByID obtiene una sucursal por ID.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	query := `SELECT id, code, name, address, active, created_at, updated_at FROM branches WHERE id = $1`
	var b entity.Branch
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Code, &b.Name, &b.Address, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapError("get branch", err)
	}
	return &b, nil
}

// Update actualiza nombre, dirección y estado de una sucursal.
func (r *BranchRepo) Update(ctx context.Context, b *entity.Branch) error {
	query := `UPDATE branches SET name = $2, address = $3, active = $4, updated_at = $5 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, b.ID, b.Name, b.Address, b.Active, b.UpdatedAt)
	if err != nil {
		return mapError("update branch", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update branch %s: %w", b.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista sucursales por código con paginación.
func (r *BranchRepo) List(ctx context.Context, limit, offset int) ([]*entity.Branch, error) {
	query := `
		SELECT id, code, name, address, active, created_at, updated_at
		FROM branches ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapError("list branches", err)
	}
	defer rows.Close()
	var list []*entity.Branch
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.Address, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
