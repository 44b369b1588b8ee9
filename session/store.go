package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key namespace for session hashes.
const DefaultPrefix = "session"

// ErrRedisUnavailable matches every store failure caused by Redis I/O.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNotFound is returned by Get when no live session exists for the
// (subject, device) pair.
var ErrNotFound = errors.New("session not found")

// OpError reports a failed store operation as "Failed to <op>: <cause>".
// It matches ErrRedisUnavailable and the cause under errors.Is.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{ErrRedisUnavailable, e.Err}
}

func opError(op string, err error) error {
	return &OpError{Op: op, Err: err}
}

// updateScript merges fields into a live hash only. HSET alone would recreate
// an expired key without a TTL.
const updateScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`

var updateLua = redis.NewScript(updateScript)

const scanBatch = 100

// Store keeps sessions as Redis hashes at <prefix>:<subjectId>:<deviceId>.
// Every key carries the TTL set at creation; nothing else refreshes it.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewStore returns a Store using rdb. An empty prefix selects DefaultPrefix.
func NewStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		redis:  rdb,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime given to new sessions.
func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) key(subjectID, deviceID string) string {
	return s.prefix + ":" + subjectID + ":" + deviceID
}

func (s *Store) subjectPattern(subjectID string) string {
	return escapeGlob(s.prefix) + ":" + escapeGlob(subjectID) + ":*"
}

// Create records a new session for subjectID under a freshly generated device
// id. Fields and TTL are written in one MULTI block.
func (s *Store) Create(ctx context.Context, subjectID, ip, userAgent string) (*Session, error) {
	deviceID, err := uuid.NewRandom()
	if err != nil {
		return nil, opError("create session", err)
	}

	sess := &Session{
		SubjectID:    subjectID,
		DeviceID:     deviceID.String(),
		IP:           ip,
		UserAgent:    userAgent,
		LastActivity: s.now().UTC(),
	}
	key := s.key(subjectID, sess.DeviceID)

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, sess.fields())
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, opError("create session", err)
	}
	return sess, nil
}

// Get returns the session for (subjectID, deviceID). A missing key and an
// empty hash both yield ErrNotFound.
func (s *Store) Get(ctx context.Context, subjectID, deviceID string) (*Session, error) {
	m, err := s.redis.HGetAll(ctx, s.key(subjectID, deviceID)).Result()
	if err != nil {
		return nil, opError("get session", err)
	}
	sess := fromFields(m)
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Update merges u into the session and stamps LastActivity. The TTL is left
// as it is. Updating a session that no longer exists is a no-op.
func (s *Store) Update(ctx context.Context, subjectID, deviceID string, u Update) error {
	args := []interface{}{fieldLastActivity, formatTime(s.now())}
	if u.IP != nil {
		args = append(args, fieldIP, *u.IP)
	}
	if u.UserAgent != nil {
		args = append(args, fieldUserAgent, *u.UserAgent)
	}

	if err := updateLua.Run(ctx, s.redis, []string{s.key(subjectID, deviceID)}, args...).Err(); err != nil {
		return opError("update session", err)
	}
	return nil
}

// Touch stamps LastActivity only.
func (s *Store) Touch(ctx context.Context, subjectID, deviceID string) error {
	return s.Update(ctx, subjectID, deviceID, Update{})
}

// Remove deletes one session. Removing an absent session succeeds.
func (s *Store) Remove(ctx context.Context, subjectID, deviceID string) error {
	if err := s.redis.Del(ctx, s.key(subjectID, deviceID)).Err(); err != nil {
		return opError("remove session", err)
	}
	return nil
}

// RemoveAll deletes every session of subjectID with a single DEL. Sessions
// created while the key scan runs may survive.
func (s *Store) RemoveAll(ctx context.Context, subjectID string) error {
	keys, err := s.scanKeys(ctx, subjectID)
	if err != nil {
		return opError("remove all sessions", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return opError("remove all sessions", err)
	}
	return nil
}

// ListAll returns the live sessions of subjectID, most recently active first.
// Keys that expire between the scan and the read are skipped.
func (s *Store) ListAll(ctx context.Context, subjectID string) ([]*Session, error) {
	keys, err := s.scanKeys(ctx, subjectID)
	if err != nil {
		return nil, opError("list sessions", err)
	}
	if len(keys) == 0 {
		return []*Session{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, opError("list sessions", err)
	}

	out := make([]*Session, 0, len(keys))
	for _, cmd := range cmds {
		if sess := fromFields(cmd.Val()); sess != nil {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

// Ping checks Redis reachability and reports the round trip.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) scanKeys(ctx context.Context, subjectID string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
		seen   = map[string]struct{}{}
	)
	pattern := s.subjectPattern(subjectID)

	for {
		batch, next, err := s.redis.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		// SCAN may return a key more than once.
		for _, k := range batch {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
