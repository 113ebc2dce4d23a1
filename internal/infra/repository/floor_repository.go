package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

const (
	reservationsKeyPrefix = "floor:reservations:"
	tablesKeyPrefix       = "floor:tables:"
	policyKeyPrefix       = "floor:policy:"
	coursesKeyPrefix      = "floor:courses:"
	waveSettingsKeyPrefix = "floor:wave:"

	// ReservationChangesChannel carries domain.ReservationChange as JSON.
	ReservationChangesChannel = "floor:reservation-changes"

	DefaultReservationTTL = 72 * time.Hour

	dayLayout = "2006-01-02"
)

type floorRepository struct {
	client         *redis.Client
	reservationTTL time.Duration
	now            func() time.Time
}

// NewFloorRepository stores one hash of raw records per store and service
// day, and one JSON document per store for tables, policy, courses and wave
// settings.
func NewFloorRepository(client *redis.Client, reservationTTL time.Duration) domain.FloorRepository {
	if reservationTTL <= 0 {
		reservationTTL = DefaultReservationTTL
	}
	return &floorRepository{
		client:         client,
		reservationTTL: reservationTTL,
		now:            time.Now,
	}
}

func reservationsKey(storeID string, day time.Time) string {
	return reservationsKeyPrefix + storeID + ":" + day.Format(dayLayout)
}

func (r *floorRepository) GetReservations(ctx context.Context, storeID string, day time.Time) ([]domain.Record, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDMissing
	}

	values, err := r.client.HGetAll(ctx, reservationsKey(storeID, day)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		dec := json.NewDecoder(strings.NewReader(values[id]))
		dec.UseNumber()
		var rec domain.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("%w: reservation %s: %v", ErrInvalidFloorData, id, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *floorRepository) SaveReservation(ctx context.Context, storeID string, day time.Time, record domain.Record) error {
	if storeID == "" {
		return domain.ErrStoreIDMissing
	}
	id := recordID(record)
	if id == "" {
		return ErrInvalidRecord
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFloorData, err)
	}
	change, err := json.Marshal(domain.ReservationChange{
		StoreID:       storeID,
		Day:           day.Format(dayLayout),
		ReservationID: id,
		ChangedAt:     r.now(),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFloorData, err)
	}

	key := reservationsKey(storeID, day)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, id, data)
	pipe.Expire(ctx, key, r.reservationTTL)
	pipe.Publish(ctx, ReservationChangesChannel, change)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *floorRepository) GetTables(ctx context.Context, storeID string) ([]domain.Table, error) {
	var tables []domain.Table
	found, err := r.getJSON(ctx, tablesKeyPrefix, storeID, &tables)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, storeID)
	}
	return tables, nil
}

func (r *floorRepository) SaveTables(ctx context.Context, storeID string, tables []domain.Table) error {
	return r.setJSON(ctx, tablesKeyPrefix, storeID, tables)
}

// GetPolicy returns nil when the store has no policy.
func (r *floorRepository) GetPolicy(ctx context.Context, storeID string) (*domain.Policy, error) {
	var policy domain.Policy
	found, err := r.getJSON(ctx, policyKeyPrefix, storeID, &policy)
	if err != nil || !found {
		return nil, err
	}
	return &policy, nil
}

func (r *floorRepository) SavePolicy(ctx context.Context, storeID string, policy *domain.Policy) error {
	if policy == nil {
		return fmt.Errorf("%w: nil policy", ErrInvalidFloorData)
	}
	return r.setJSON(ctx, policyKeyPrefix, storeID, policy)
}

func (r *floorRepository) GetCourses(ctx context.Context, storeID string) ([]domain.Course, error) {
	var courses []domain.Course
	if _, err := r.getJSON(ctx, coursesKeyPrefix, storeID, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *floorRepository) SaveCourses(ctx context.Context, storeID string, courses []domain.Course) error {
	return r.setJSON(ctx, coursesKeyPrefix, storeID, courses)
}

// GetWaveSettings returns nil when the store has no settings.
func (r *floorRepository) GetWaveSettings(ctx context.Context, storeID string) (*domain.WaveSettings, error) {
	var settings domain.WaveSettings
	found, err := r.getJSON(ctx, waveSettingsKeyPrefix, storeID, &settings)
	if err != nil || !found {
		return nil, err
	}
	return &settings, nil
}

func (r *floorRepository) SaveWaveSettings(ctx context.Context, storeID string, settings *domain.WaveSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil wave settings", ErrInvalidFloorData)
	}
	return r.setJSON(ctx, waveSettingsKeyPrefix, storeID, settings)
}

func (r *floorRepository) getJSON(ctx context.Context, prefix, storeID string, v any) (bool, error) {
	if storeID == "" {
		return false, domain.ErrStoreIDMissing
	}

	data, err := r.client.Get(ctx, prefix+storeID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return false, fmt.Errorf("%w: %s%s: %v", ErrInvalidFloorData, prefix, storeID, err)
	}
	return true, nil
}

// setJSON writes store documents without expiry.
func (r *floorRepository) setJSON(ctx context.Context, prefix, storeID string, v any) error {
	if storeID == "" {
		return domain.ErrStoreIDMissing
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFloorData, err)
	}
	return r.client.Set(ctx, prefix+storeID, data, 0).Err()
}

func recordID(rec domain.Record) string {
	for _, key := range []string{"id", "reservationId"} {
		switch v := rec[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case json.Number:
			return v.String()
		}
	}
	return ""
}
