package store

import (
	"context"
	"encoding/json"
	"fmt"

	"dat-catalog/core/items"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KeysTable  = "catalog_keys"
	ItemsTable = "catalog_items"
)

// keyRow is one bucket.
type keyRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:512;uniqueIndex"`
}

func (keyRow) TableName() string { return KeysTable }

// itemRow is one item of a bucket, serialized as JSON.
type itemRow struct {
	ID       uint   `gorm:"primaryKey"`
	Bucket   string `gorm:"size:512;index:idx_bucket_position,priority:1"`
	Position int    `gorm:"index:idx_bucket_position,priority:2"`
	Kind     string `gorm:"size:32"`
	Payload  string `gorm:"type:text"`
}

func (itemRow) TableName() string { return ItemsTable }

// ItemColumns lists the columns the store reads and writes in ItemsTable.
var ItemColumns = []string{"id", "bucket", "position", "kind", "payload"}

// SQL keeps buckets in two tables through GORM.
type SQL struct {
	db        *gorm.DB
	batchSize int
}

// NewSQL creates the store tables if needed.
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&keyRow{}, &itemRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog tables: %w", err)
	}
	return &SQL{db: db, batchSize: 500}, nil
}

func (s *SQL) EnsureKey(ctx context.Context, key string) (bool, error) {
	return ensureKey(s.db.WithContext(ctx), key)
}

func ensureKey(tx *gorm.DB, key string) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&keyRow{Name: key})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 0, nil
}

func (s *SQL) Fetch(ctx context.Context, key string) ([]*items.Item, error) {
	var rows []itemRow
	err := s.db.WithContext(ctx).
		Where("bucket = ?", key).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := make([]*items.Item, 0, len(rows))
	for _, r := range rows {
		if r.Payload == "null" {
			list = append(list, nil)
			continue
		}
		it := new(items.Item)
		if err := json.Unmarshal([]byte(r.Payload), it); err != nil {
			return nil, fmt.Errorf("failed to decode item %d of %q: %w", r.Position, key, err)
		}
		list = append(list, it)
	}
	return list, nil
}

func (s *SQL) Replace(ctx context.Context, key string, list []*items.Item) error {
	rows, err := encodeRows(key, 0, list)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureKey(tx, key); err != nil {
			return err
		}
		if err := tx.Where("bucket = ?", key).Delete(&itemRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, s.batchSize).Error
	})
}

func (s *SQL) Append(ctx context.Context, key string, list ...*items.Item) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureKey(tx, key); err != nil {
			return err
		}
		var last int
		err := tx.Model(&itemRow{}).
			Where("bucket = ?", key).
			Select("COALESCE(MAX(position), -1)").
			Scan(&last).Error
		if err != nil {
			return err
		}

		rows, err := encodeRows(key, last+1, list)
		if err != nil || len(rows) == 0 {
			return err
		}
		return tx.CreateInBatches(rows, s.batchSize).Error
	})
}

func (s *SQL) DeleteKey(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bucket = ?", key).Delete(&itemRow{}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", key).Delete(&keyRow{}).Error
	})
}

// Keys returns keys in creation order.
func (s *SQL) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	err := s.db.WithContext(ctx).Model(&keyRow{}).Order("id").Pluck("name", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func encodeRows(key string, start int, list []*items.Item) ([]itemRow, error) {
	rows := make([]itemRow, 0, len(list))
	for i, it := range list {
		payload, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("failed to encode item %d of %q: %w", i, key, err)
		}
		rows = append(rows, itemRow{
			Bucket:   key,
			Position: start + i,
			Kind:     string(it.Kind()),
			Payload:  string(payload),
		})
	}
	return rows, nil
}

// Schema lists the columns the store expects per table.
var Schema = map[string][]string{
	KeysTable:  {"id", "name"},
	ItemsTable: ItemColumns,
}
