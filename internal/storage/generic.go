package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/uptrace/bun"
)

// genericRow is the physical shape of every table this package owns. The
// table name itself is supplied at query time via ModelTableExpr, which is
// how a single Go type can back four differently-named tables.
type genericRow struct {
	bun.BaseModel `bun:"alias:r"`

	Key       string    `bun:"key,pk"`
	Payload   []byte    `bun:"payload,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Upsert implements adapters.Persistence: it JSON-encodes value and writes
// it under key in table, replacing any existing row.
func (s *Store) Upsert(ctx context.Context, table string, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encode value for %s/%s: %w", table, key, err)
	}
	row := &genericRow{Key: key, Payload: payload, UpdatedAt: time.Now()}
	_, err = s.db.NewInsert().
		Model(row).
		ModelTableExpr(table).
		On("CONFLICT (key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// GetByKey implements adapters.Persistence: it decodes the stored payload
// for key in table into dest, which must be a pointer.
func (s *Store) GetByKey(ctx context.Context, table string, key string, dest interface{}) error {
	row := new(genericRow)
	err := s.db.NewSelect().
		Model(row).
		ModelTableExpr(table).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(row.Payload, dest)
}

// ListByFilter implements adapters.Persistence: it decodes every row in
// table whose payload contains filter (jsonb containment) into dest, which
// must be a pointer to a slice.
func (s *Store) ListByFilter(ctx context.Context, table string, filter map[string]interface{}, dest interface{}) error {
	var rows []genericRow
	query := s.db.NewSelect().Model(&rows).ModelTableExpr(table)
	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return fmt.Errorf("storage: encode filter for %s: %w", table, err)
		}
		query = query.Where("payload @> ?::jsonb", string(filterJSON))
	}
	if err := query.Scan(ctx); err != nil {
		return err
	}

	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("storage: ListByFilter dest must be a pointer to a slice")
	}
	sliceVal := destVal.Elem()
	elemType := sliceVal.Type().Elem()

	out := reflect.MakeSlice(sliceVal.Type(), 0, len(rows))
	for _, row := range rows {
		elemPtr := reflect.New(elemType)
		if err := json.Unmarshal(row.Payload, elemPtr.Interface()); err != nil {
			return fmt.Errorf("storage: decode row %s from %s: %w", row.Key, table, err)
		}
		out = reflect.Append(out, elemPtr.Elem())
	}
	sliceVal.Set(out)
	return nil
}

// DeleteOlderThan implements adapters.Persistence: it removes every row in
// table last updated before cutoff, returning the count removed.
func (s *Store) DeleteOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*genericRow)(nil)).
		ModelTableExpr(table).
		Where("updated_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
