package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/adapters/memory"
	sqlstore "github.com/aretw0/tally/pkg/adapters/sql"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/schedule"
)

func TestOpen(t *testing.T) {
	t.Run("FS Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")

		store, err := platform.Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		fsStore, ok := store.(*fs.Store)
		if !ok {
			t.Fatalf("Expected fs store, got %T", store)
		}
		if fsStore.Path != path {
			t.Errorf("Expected path %s, got %s", path, fsStore.Path)
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			t.Errorf("Store directory not created")
		}
	})

	t.Run("FS MustExist Fails if Directory Missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")

		_, err := platform.Open(path, platform.WithMustExist(true))
		if !errors.Is(err, core.ErrStoreUnavailable) {
			t.Errorf("Expected ErrStoreUnavailable, got %v", err)
		}
	})

	t.Run("SQLite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db", "tally.db")

		store, err := platform.Open(path, platform.WithAdapter(platform.AdapterSQLite))
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		s, ok := store.(*sqlstore.Store)
		if !ok {
			t.Fatalf("Expected sql store, got %T", store)
		}
		defer s.Close()
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Database file not created: %v", err)
		}
	})

	t.Run("Memory", func(t *testing.T) {
		store, err := platform.Open("", platform.WithAdapter(platform.AdapterMemory))
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if _, ok := store.(*memory.Store); !ok {
			t.Errorf("Expected memory store, got %T", store)
		}
	})

	t.Run("Injected Store Wins", func(t *testing.T) {
		injected := memory.NewStore()
		store, err := platform.Open("ignored", platform.WithAdapter("bogus"), platform.WithStore(injected))
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if store != injected {
			t.Errorf("Expected the injected store")
		}
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		if _, err := platform.Open("x", platform.WithAdapter("s3")); err == nil {
			t.Error("Expected error for unknown adapter")
		}
	})
}

func TestNew_EndToEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.April, 15, 9, 0, 0, 0, time.UTC)
	clock := core.ClockFunc(func() time.Time { return now })

	var delivered []schedule.Notification
	notifier := schedule.NotifierFunc(func(ctx context.Context, n schedule.Notification) error {
		delivered = append(delivered, n)
		return nil
	})

	opts := []platform.Option{
		platform.WithClock(clock),
		platform.WithLocation(time.UTC),
		platform.WithNotifier(notifier),
	}
	svc, err := platform.New(filepath.Join(t.TempDir(), "store"), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	n, err := svc.Create(ctx, "Rent EUR900 every month 15/04")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.DueDate == nil || *n.DueDate != (core.Date{Year: 2024, Month: time.April, Day: 15}) {
		t.Fatalf("Unexpected due date: %v", n.DueDate)
	}

	report, err := platform.NewScheduler(svc, opts...).Scan(ctx)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if report.Notified != 1 || len(delivered) != 1 {
		t.Errorf("Expected one reminder, got report %+v and %d deliveries", report, len(delivered))
	}
}

func TestNewDaemon_WatchNeedsWatchableStore(t *testing.T) {
	svc, err := platform.New("", platform.WithAdapter(platform.AdapterMemory))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	d := platform.NewDaemon(svc, platform.WithWatch(true), platform.WithPollInterval(time.Minute))
	if d == nil {
		t.Fatal("Expected a daemon")
	}
}
