// Package persist serializes the full state graph to a string-keyed
// blob and restores it at startup. Corrupt or structurally implausible
// blobs are rejected so the caller can fall back to seed data.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/questhub/questhub/internal/hub"
)

// DefaultStateKey is the versioned key the state graph is stored under.
// Bumping the version abandons old blobs: they read as absent and the
// caller reseeds.
const DefaultStateKey = "questhub_state_v1"

// DefaultChallengeKey tracks the last daily-challenge date (YYYY-MM-DD),
// independent of the main blob.
const DefaultChallengeKey = "questhub_daily_challenge_date"

// MinViableYears is the smallest curriculum that counts as intact. A
// partially corrupted blob with fewer years is worse than a clean
// reseed, so anything below this threshold is rejected outright.
const MinViableYears = 5

// ErrNotFound is returned by blob stores when a key has no value.
var ErrNotFound = errors.New("persist: key not found")

// ErrInvalidState marks a blob that parsed but failed structural
// validation.
var ErrInvalidState = errors.New("persist: invalid state blob")

// BlobStore reads and writes opaque blobs under string keys.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Encode flattens the state graph into one JSON blob.
func Encode(data hub.AppData) ([]byte, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return blob, nil
}

// Decode parses a state blob and validates its shape. Any parse failure,
// an empty quest list, or a curriculum below MinViableYears yields an
// error wrapping ErrInvalidState, and the caller should reseed rather
// than run on a crippled graph.
func Decode(blob []byte) (*hub.AppData, error) {
	var data hub.AppData
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if len(data.Quests) == 0 {
		return nil, fmt.Errorf("%w: no quests", ErrInvalidState)
	}
	if len(data.Years) < MinViableYears {
		return nil, fmt.Errorf("%w: %d years, need at least %d", ErrInvalidState, len(data.Years), MinViableYears)
	}
	return &data, nil
}

// Adapter binds a blob store to the versioned state key.
type Adapter struct {
	store        BlobStore
	stateKey     string
	challengeKey string
}

// NewAdapter creates an adapter over the given store using the default
// keys.
func NewAdapter(store BlobStore) *Adapter {
	return &Adapter{
		store:        store,
		stateKey:     DefaultStateKey,
		challengeKey: DefaultChallengeKey,
	}
}

// Load restores the state graph. Returns ErrNotFound when no blob
// exists, or an ErrInvalidState-wrapping error when the blob is corrupt;
// both mean "seed instead".
func (a *Adapter) Load(ctx context.Context) (*hub.AppData, error) {
	blob, err := a.store.Get(ctx, a.stateKey)
	if err != nil {
		return nil, err
	}
	return Decode(blob)
}

// Save writes the full graph. Callers treat failures as best-effort:
// log and continue on the in-memory state.
func (a *Adapter) Save(ctx context.Context, data hub.AppData) error {
	blob, err := Encode(data)
	if err != nil {
		return err
	}
	if err := a.store.Put(ctx, a.stateKey, blob); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LastChallengeDate returns the stored daily-challenge date, or "" when
// none was recorded.
func (a *Adapter) LastChallengeDate(ctx context.Context) string {
	blob, err := a.store.Get(ctx, a.challengeKey)
	if err != nil {
		return ""
	}
	return string(blob)
}

// SetLastChallengeDate records the date a daily challenge was served.
func (a *Adapter) SetLastChallengeDate(ctx context.Context, date string) error {
	return a.store.Put(ctx, a.challengeKey, []byte(date))
}
