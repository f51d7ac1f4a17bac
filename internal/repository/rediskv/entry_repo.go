// Package rediskv contains a Redis implementation of the entry repository. Each entry is
// a hash record; a sorted set scored by the UTC instant keeps the listing order.
package rediskv

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"

	"github.com/and161185/tzaware/internal/errs"
	"github.com/and161185/tzaware/internal/model"
	"github.com/and161185/tzaware/tzaware"
)

// Hash field names. Absent fields stand for NULL.
const (
	fieldID       = "id"
	fieldInfo     = "info"
	fieldExpected = "expected_offset"
	fieldCreated  = "created_at"
)

// DefaultPrefix namespaces all keys written by EntryRepo.
const DefaultPrefix = "tzaware:"

// Precision is the resolution of stored instants; index scores are UnixMicro.
const Precision = time.Microsecond

// Client is the subset of *redis.Client used by EntryRepo.
type Client interface {
	HSetNX(ctx context.Context, key, field string, value any) *redis.BoolCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

var _ Client = (*redis.Client)(nil)

// NewClient creates a Redis client.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// EntryRepo implements EntryRepository on Redis.
type EntryRepo struct {
	c      Client
	prefix string
	policy tzaware.Policy
	now    func() time.Time
}

// NewEntryRepo constructs an entry repository. An empty prefix uses DefaultPrefix.
func NewEntryRepo(c Client, prefix string, policy tzaware.Policy) *EntryRepo {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &EntryRepo{c: c, prefix: prefix, policy: policy, now: time.Now}
}

func (r *EntryRepo) entryKey(id string) string { return r.prefix + "entry:" + id }
func (r *EntryRepo) indexKey() string          { return r.prefix + "entries" }

// Create claims the entry key, then writes the record and its index entry in one
// MULTI/EXEC block. The instant is rounded to Precision, the resolution of the index
// score, and e.At is updated to what was stored.
func (r *EntryRepo) Create(ctx context.Context, e *model.Entry) error {
	id := e.ID.String()
	key := r.entryKey(id)

	ok, err := r.c.HSetNX(ctx, key, fieldID, id).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrAlreadyExists
	}

	created := r.now().UTC()
	values := []any{fieldInfo, e.Info, fieldCreated, created.Format(time.RFC3339Nano)}
	if e.ExpectedOffset != nil {
		values = append(values, fieldExpected, strconv.FormatInt(int64(*e.ExpectedOffset), 10))
	}
	f := tzaware.RoundFields(e.At, Precision)
	values = append(values, atValues(f)...)

	_, err = r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, values...)
		p.ZAdd(ctx, r.indexKey(), redis.Z{Score: score(f), Member: id})
		return nil
	})
	if err != nil {
		_ = r.c.Del(ctx, key).Err()
		return err
	}
	e.At = tzaware.FromFields(f)
	e.CreatedAt = created
	return nil
}

// Get loads an entry by ID.
func (r *EntryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	h, err := r.c.HGetAll(ctx, r.entryKey(id.String())).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, errs.ErrNotFound
	}
	return r.decode(h)
}

// List walks the UTC index. Entries sharing an instant are ordered by ID.
func (r *EntryRepo) List(ctx context.Context, limit int) ([]model.Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := r.c.ZRange(ctx, r.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]model.Entry, 0, len(ids))
	for _, id := range ids {
		h, err := r.c.HGetAll(ctx, r.entryKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if len(h) == 0 {
			continue // deleted between ZRANGE and HGETALL
		}
		e, err := r.decode(h)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// Count returns the size of the index.
func (r *EntryRepo) Count(ctx context.Context) (int64, error) {
	return r.c.ZCard(ctx, r.indexKey()).Result()
}

// Delete removes the record and its index entry.
func (r *EntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	var del *redis.IntCmd
	_, err := r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, r.entryKey(id.String()))
		p.ZRem(ctx, r.indexKey(), id.String())
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *EntryRepo) decode(h map[string]string) (*model.Entry, error) {
	id := h[fieldID]
	var e model.Entry
	var err error
	if e.ID, err = uuid.FromString(id); err != nil {
		return nil, fmt.Errorf("entry %q: %w", id, err)
	}
	e.Info = h[fieldInfo]
	if v, ok := h[fieldExpected]; ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %s: %w", id, fieldExpected, err)
		}
		exp := int32(n)
		e.ExpectedOffset = &exp
	}
	if v, ok := h[fieldCreated]; ok {
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("entry %s: %s: %w", id, fieldCreated, err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
	}

	f, err := atFields(h)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	if e.At, err = r.policy.Rehydrate(f); err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	return &e, nil
}

// atValues flattens the present composite fields into HSET arguments.
func atValues(f tzaware.Fields) []any {
	var v []any
	if f.UTC.Valid {
		v = append(v, model.AtColumns.UTC, f.UTC.Time.UTC().Format(time.RFC3339Nano))
	}
	if f.Zone.Valid {
		v = append(v, model.AtColumns.Zone, f.Zone.String)
	}
	if f.Offset.Valid {
		v = append(v, model.AtColumns.Offset, strconv.FormatInt(int64(f.Offset.Int32), 10))
	}
	return v
}

func atFields(h map[string]string) (tzaware.Fields, error) {
	var (
		utc    *time.Time
		zone   *string
		offset *int32
	)
	if v, ok := h[model.AtColumns.UTC]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return tzaware.Fields{}, fmt.Errorf("%s: %w", model.AtColumns.UTC, err)
		}
		t = t.UTC()
		utc = &t
	}
	if v, ok := h[model.AtColumns.Zone]; ok {
		zone = &v
	}
	if v, ok := h[model.AtColumns.Offset]; ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return tzaware.Fields{}, fmt.Errorf("%s: %w", model.AtColumns.Offset, err)
		}
		off := int32(n)
		offset = &off
	}
	return tzaware.NewFields(utc, zone, offset), nil
}

// score places empty instants before all others.
func score(f tzaware.Fields) float64 {
	if !f.UTC.Valid {
		return math.Inf(-1)
	}
	return float64(f.UTC.Time.UnixMicro())
}
