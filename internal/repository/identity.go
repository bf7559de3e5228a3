package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const identityPrefix = "identity:"

type IdentityRepository interface {
	Get(ctx context.Context, profile string) (*entity.Identity, error)
	Save(ctx context.Context, identity *entity.Identity) error
	GetOrCreate(ctx context.Context, profile string) (*entity.Identity, error)
}

type dbIdentity struct {
	client *redis.Client
}

func NewIdentityRepository(client *redis.Client) IdentityRepository {
	return &dbIdentity{
		client: client,
	}
}

func (that *dbIdentity) Save(ctx context.Context, identity *entity.Identity) error {
	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err = that.client.Set(ctx, identityPrefix+identity.Profile, identityJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set identity: %w", err)
	}

	return nil
}

func (that *dbIdentity) Get(ctx context.Context, profile string) (*entity.Identity, error) {
	response, err := that.client.Get(ctx, identityPrefix+profile).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrIdentityNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	var identity entity.Identity
	if err = json.Unmarshal([]byte(response), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &identity, nil
}

// GetOrCreate returns the identity stored for profile, creating one with a fresh player id.
func (that *dbIdentity) GetOrCreate(ctx context.Context, profile string) (*entity.Identity, error) {
	return getOrCreate(ctx, that, profile)
}

type memIdentity struct {
	mu         sync.Mutex
	identities map[string]entity.Identity
}

// NewMemoryIdentityRepository keeps identities for the lifetime of the process only.
func NewMemoryIdentityRepository() IdentityRepository {
	return &memIdentity{
		identities: make(map[string]entity.Identity),
	}
}

func (that *memIdentity) Save(_ context.Context, identity *entity.Identity) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored := *identity
	stored.LastScores = maps.Clone(identity.LastScores)
	that.identities[identity.Profile] = stored

	return nil
}

func (that *memIdentity) Get(_ context.Context, profile string) (*entity.Identity, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.identities[profile]
	if !ok {
		return nil, apperror.ErrIdentityNotFound
	}

	stored.LastScores = maps.Clone(stored.LastScores)

	return &stored, nil
}

func (that *memIdentity) GetOrCreate(ctx context.Context, profile string) (*entity.Identity, error) {
	return getOrCreate(ctx, that, profile)
}

func getOrCreate(ctx context.Context, repo IdentityRepository, profile string) (*entity.Identity, error) {
	identity, err := repo.Get(ctx, profile)
	if err == nil {
		return identity, nil
	}

	if !errors.Is(err, apperror.ErrIdentityNotFound) {
		return nil, err
	}

	identity = &entity.Identity{
		Profile:  profile,
		PlayerID: uuid.NewString(),
	}

	if err = repo.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return identity, nil
}
