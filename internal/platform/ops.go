package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/adapters/memory"
	sqlstore "github.com/aretw0/tally/pkg/adapters/sql"
	"github.com/aretw0/tally/pkg/core"
)

// Open opens and initializes the store selected by the options.
// The 'uri' argument is adapter-specific: a directory for fs, a database file
// for sqlite, a connection string for postgres. It is ignored by memory.
func Open(uri string, opts ...Option) (core.Store, error) {
	return open(uri, resolve(opts))
}

func open(uri string, o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	var store core.Store
	var err error

	switch o.adapter {
	case AdapterFS, "":
		store = initFS(uri, o)
	case AdapterSQLite:
		store, err = initSQL(sqlstore.SQLite, resolvePath(uri, o), o)
	case AdapterPostgres:
		store, err = initSQL(sqlstore.Postgres, uri, o)
	case AdapterMemory:
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if init, ok := store.(core.Initializer); ok {
		if err := init.Initialize(context.Background()); err != nil {
			return nil, err
		}
	}
	o.logger.Debug("store opened", "adapter", o.adapter)
	return store, nil
}

// resolvePath applies the dev sandbox to a file-based store location.
func resolvePath(path string, o *options) string {
	tempDir, _ := o.config["temp_dir"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Read-only stores and an explicit opt-out bypass the sandbox.
	bypassSafety := isReadOnly || !devSafety
	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolved := ResolveStorePath(path, useTemp)

	if IsDevRun() {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if useTemp && resolved != filepath.Clean(path) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved
}

// initFS builds the filesystem store. No I/O happens before Initialize.
func initFS(path string, o *options) core.Store {
	if path == "" {
		path = DirName
	}
	mustExist, _ := o.config["must_exist"].(bool)
	isReadOnly, _ := o.config["read_only"].(bool)
	errorHandler, _ := o.config["error_handler"].(func(error))

	return fs.NewStore(fs.Config{
		Path:         resolvePath(path, o),
		MustExist:    mustExist,
		ReadOnly:     isReadOnly,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}

func initSQL(dialect sqlstore.Dialect, dsn string, o *options) (core.Store, error) {
	if dialect == sqlstore.SQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
		}
	}
	table, _ := o.config["table"].(string)
	return sqlstore.Open(sqlstore.Config{
		Dialect: dialect,
		DSN:     dsn,
		Table:   table,
		Logger:  o.logger,
	})
}
