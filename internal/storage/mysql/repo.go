package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"trip_hotels/internal/domain"
)

// MySQL error 1146: table doesn't exist.
const errNoSuchTable = 1146

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// checkPartition rejects keys that cannot be used as a quoted table name.
func checkPartition(key string) error {
	if key == "" || len(key) > 64 || strings.ContainsAny(key, "`\x00") {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPartition, key)
	}
	return nil
}

func (r *Repo) ListPartitions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listPartitionsSQL, partitionComment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *Repo) CreatePartition(ctx context.Context, key string) error {
	if err := checkPartition(key); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createPartitionSQL, key)); err != nil {
		return err
	}
	// IF NOT EXISTS is a no-op on a foreign table of the same name
	var comment string
	if err := r.db.QueryRowContext(ctx, tableCommentSQL, key).Scan(&comment); err != nil {
		return fmt.Errorf("check partition %s: %w", key, err)
	}
	if comment != partitionComment {
		return fmt.Errorf("%w: table %s exists and is not a hotel partition", domain.ErrInvalidPartition, key)
	}
	return nil
}

// InsertHotels writes all records in a single transaction.
func (r *Repo) InsertHotels(ctx context.Context, key string, hs []domain.HotelRecord) (err error) {
	if err := checkPartition(key); err != nil {
		return err
	}
	if len(hs) == 0 {
		return nil
	}

	values := make([]string, 0, len(hs))
	args := make([]any, 0, len(hs)*9) // 9 params per row
	for _, h := range hs {
		values = append(values, hotelPlaceholders)
		args = append(args,
			h.Title,
			valF64(h.Rating),
			h.Location,
			h.Latitude,
			h.Longitude,
			h.RoomType,
			valF64(h.DiscountPrice),
			valF64(h.BasePrice),
			valStr(h.ImageRef),
		)
	}
	sqlStr := fmt.Sprintf(insertHotelsPrefix, key) + strings.Join(values, ",")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) ListHotels(ctx context.Context, key string, limit int) ([]domain.HotelRecord, error) {
	if err := checkPartition(key); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(listHotelsSQL, key), limit)
	if err != nil {
		var me *mysqldrv.MySQLError
		if errors.As(err, &me) && me.Number == errNoSuchTable {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		var h domain.HotelRecord
		var rating, discount, base sql.NullFloat64
		var image sql.NullString
		if err := rows.Scan(
			&h.ID,
			&h.Title,
			&rating,
			&h.Location,
			&h.Latitude,
			&h.Longitude,
			&h.RoomType,
			&discount,
			&base,
			&image,
		); err != nil {
			return nil, err
		}
		if rating.Valid {
			f := rating.Float64
			h.Rating = &f
		}
		if discount.Valid {
			f := discount.Float64
			h.DiscountPrice = &f
		}
		if base.Valid {
			f := base.Float64
			h.BasePrice = &f
		}
		if image.Valid {
			s := image.String
			h.ImageRef = &s
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
