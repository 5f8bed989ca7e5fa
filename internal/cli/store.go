package cli

import (
	"fmt"

	"github.com/hasbyte1/go-credential-utils/credentials"
	"github.com/hasbyte1/go-credential-utils/credentials/filestore"
	"github.com/hasbyte1/go-credential-utils/credentials/inmemory"
	"github.com/hasbyte1/go-credential-utils/credentials/redisstore"
	"github.com/hasbyte1/go-credential-utils/credentials/sqlstore"
)

// openRepository opens the repository selected by the store configuration.
// The returned close function releases it and is never nil.
func (a *app) openRepository() (credentials.Repository, func() error, error) {
	noop := func() error { return nil }
	cfg := a.cfg.Store

	switch cfg.Driver {
	case "memory":
		return inmemory.New(), noop, nil
	case "file":
		sealer, err := a.cfg.Sealer(a.src)
		if err != nil {
			return nil, noop, err
		}
		var opts []filestore.Option
		if sealer != nil {
			opts = append(opts, filestore.WithSealer(sealer))
		}
		return filestore.New(cfg.DSN, opts...), noop, nil
	case "sqlite":
		db, err := sqlstore.Open(cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite store: %w", err)
		}
		return sqlstore.New(db), db.Close, nil
	case "redis":
		s, err := redisstore.NewFromURL(cfg.DSN, "")
		if err != nil {
			return nil, noop, fmt.Errorf("open redis store: %w", err)
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
