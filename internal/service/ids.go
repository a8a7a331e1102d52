package service

import (
	"errors"
	"fmt"

	"meetup-backend/internal/ids"
	"meetup-backend/internal/metrics"

	"gorm.io/gorm"
)

const insertAttempts = 3

// insertWithID assigns a fresh random id to row and inserts it.
//
// The generator only checks that the id is free at the time of the lookup.
// If a concurrent insert takes it first the primary key rejects ours; the
// insert runs in a savepoint so the surrounding transaction survives, and a
// new id is drawn.
func insertWithID[T any](tx *gorm.DB, gen ids.Generator, kind string, row *T, setID func(int64)) error {
	exists := func(id int64) (bool, error) {
		var n int64
		err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error
		return n > 0, err
	}
	var err error
	for i := 0; i < insertAttempts; i++ {
		id, genErr := gen.Next(exists)
		if genErr != nil {
			return fmt.Errorf("%s id: %w", kind, genErr)
		}
		setID(id)
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(row).Error
		})
		if err == nil {
			metrics.EntitiesCreated.WithLabelValues(kind).Inc()
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		taken, lookupErr := exists(id)
		if lookupErr != nil {
			return lookupErr
		}
		if !taken {
			// some other unique column
			return err
		}
		metrics.IDCollisions.WithLabelValues(kind).Inc()
	}
	return fmt.Errorf("%s id: %w", kind, err)
}

// created counts a row inserted without a random id.
func created(kind string) {
	metrics.EntitiesCreated.WithLabelValues(kind).Inc()
}
