package memory

import (
	"time"

	"textcards-be/pkg/pipeline"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository holds live card sessions with a sliding TTL; idle
// sessions expire and their state is gone for good (the workflow has no
// persistence by design).
func NewSessionRepository(ttl, cleanupInterval time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (r *SessionRepository) Save(session *pipeline.Session) {
	r.cache.Set(session.Id, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionId string) (*pipeline.Session, bool) {
	if x, found := r.cache.Get(sessionId); found {
		// Touch to keep active sessions alive.
		r.cache.Set(sessionId, x, cache.DefaultExpiration)
		return x.(*pipeline.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionId string) {
	r.cache.Delete(sessionId)
}
