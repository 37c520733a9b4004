package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn() queryable { return r.pool }

const cols = `id, calculator, user_id, input, result, computed_at`

func scanRow(row pgx.Row) (*Calculation, error) {
	var c Calculation
	err := row.Scan(&c.ID, &c.Calculator, &c.UserID, &c.Input, &c.Result, &c.ComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Calculation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn().Exec(ctx, `
		INSERT INTO calculation_history (id, calculator, user_id, input, result, computed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Calculator, c.UserID, c.Input, c.Result, c.ComputedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Calculation, error) {
	return scanRow(r.conn().QueryRow(ctx, `SELECT `+cols+` FROM calculation_history WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Calculation, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Calculator != "" {
		where += fmt.Sprintf(` AND calculator = $%d`, idx)
		args = append(args, f.Calculator)
		idx++
	}
	if f.UserID != "" {
		where += fmt.Sprintf(` AND user_id = $%d`, idx)
		args = append(args, f.UserID)
		idx++
	}

	var total int
	if err := r.conn().QueryRow(ctx, `SELECT COUNT(*) FROM calculation_history`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + cols + ` FROM calculation_history` + where +
		fmt.Sprintf(` ORDER BY computed_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Calculation
	for rows.Next() {
		c, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
