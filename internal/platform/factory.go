package platform

import (
	"context"

	"github.com/sion-neko/AI-DB/pkg/core"
	"github.com/sion-neko/AI-DB/pkg/ids"
)

// New wires store, persistence and manager and starts the manager. The
// dataset loads in the background; use WaitReady to block on it.
//
//	m, err := aidb.New(ctx, "./.aidb", aidb.WithAdapter("sqlite"))
func New(ctx context.Context, uri string, opts ...Option) (*core.Manager, error) {
	o := buildOptions(opts)

	// The codec is checked first: a bad format must not leave a store open.
	codec, err := codecFor(o)
	if err != nil {
		return nil, err
	}

	// 1. Storage
	store, err := initStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	// 2. Persistence
	key, _ := o.config["key"].(string)
	persistence := core.NewPersistence(store,
		core.WithCodec(codec),
		core.WithKey(key),
		core.WithPersistenceLogger(o.logger),
	)

	// 3. Identifiers
	scheme, _ := o.config["id_scheme"].(string)
	node, _ := o.config["snowflake_node"].(int64)
	gen, err := ids.ByScheme(scheme, node)
	if err != nil {
		_ = persistence.Close()
		return nil, err
	}

	// 4. Manager
	managerOpts := []core.ManagerOption{
		core.WithLogger(o.logger),
		core.WithIDGenerator(gen),
	}
	if size, ok := o.config["event_buffer"].(int); ok {
		managerOpts = append(managerOpts, core.WithEventBuffer(size))
	}
	manager := core.NewManager(persistence, managerOpts...)
	manager.Start(ctx)

	return manager, nil
}
