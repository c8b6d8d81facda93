package readcache

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// TTLs are short on purpose: invalidation is best-effort and staleness is
// bounded by expiry, the entity store stays the system of record.
const (
	TTLWorkspace    = 5 * time.Minute
	TTLMembers      = 5 * time.Minute
	TTLProjects     = 3 * time.Minute
	TTLDashboard    = 2 * time.Minute
	TTLTasks        = 2 * time.Minute
	TTLComments     = 2 * time.Minute
	TTLNotification = 1 * time.Minute
)

var store = cache.New(TTLWorkspace, 1*time.Minute)

func Get(key string) (interface{}, bool) {
	value, found := store.Get(key)
	if found {
		logrus.Debugf("cache hit: %s", key)
	} else {
		logrus.Debugf("cache miss: %s", key)
	}
	return value, found
}

func Set(key string, value interface{}, ttl time.Duration) {
	store.Set(key, value, ttl)
	logrus.Debugf("cache set: %s (ttl=%s)", key, ttl)
}

func Delete(keys ...string) {
	for _, key := range keys {
		store.Delete(key)
		logrus.Debugf("cache delete: %s", key)
	}
}

// Reset drop every entry, for tests
func Reset() {
	store.Flush()
}
