package schemaregistry

import (
	"fmt"
	"time"

	"github.com/tryfix/log"
)

// backgroundSync polls the registry for the latest version of every subject
// the cache has seen and appends unseen schemas, so consumers pick up new
// producer versions without a restart. It only ever adds entries, existing
// id bindings are immutable.
type backgroundSync struct {
	interval time.Duration
	cache    *schemaCache
	logger   log.Logger
	done     chan struct{}
	stopped  chan struct{}
}

func newSync(interval time.Duration, cache *schemaCache, logger log.Logger) *backgroundSync {
	return &backgroundSync{
		interval: interval,
		cache:    cache,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (s *backgroundSync) start() {
	s.logger.Info(`schemaregistry.sync`, `background sync started...`)

	go func() {
		defer close(s.stopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.syncOnce()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *backgroundSync) stop() {
	close(s.done)
	<-s.stopped
	s.logger.Info(`schemaregistry.sync`, `background sync stopped`)
}

func (s *backgroundSync) syncOnce() {
	for _, subject := range s.cache.subjects() {
		added, err := s.cache.refreshLatest(subject)
		if err != nil {
			s.logger.Warn(`schemaregistry.sync`,
				fmt.Sprintf(`latest version lookup failed for subject [%s] due to %+v`, subject, err))
			continue
		}

		if added {
			s.logger.Info(`schemaregistry.sync`,
				fmt.Sprintf(`new schema version cached for subject [%s]`, subject))
		}
	}
}
