package sweeper

import (
	"ShareVault/config"
	"ShareVault/internal/repo"
	"ShareVault/internal/storage"
	"ShareVault/model"
	"ShareVault/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestMain sets up the test database.
func TestMain(m *testing.M) {
	config.InitConfig()
	repo.InitMysqlTest()
	cleanTables()
	os.Exit(m.Run())
}

func cleanTables() {
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	for _, table := range []string{"share_access_log", "share_links", "files", "users"} {
		repo.Db.Exec("DELETE FROM " + table)
	}
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 1")
}

// fakeStore records removals and fails on demand.
type fakeStore struct {
	mu        sync.Mutex
	removed   []string
	failures  map[string]int
	notFound  map[string]bool
	failError error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failures:  make(map[string]int),
		notFound:  make(map[string]bool),
		failError: errors.New("backend down"),
	}
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts storage.PutOptions) error {
	return nil
}

func (f *fakeStore) StatObject(ctx context.Context, bucket, object string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrObjectNotFound
}

func (f *fakeStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
}

func (f *fakeStore) RemoveObject(ctx context.Context, bucket, object string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notFound[object] {
		return storage.ErrObjectNotFound
	}
	if remaining := f.failures[object]; remaining != 0 {
		if remaining > 0 {
			f.failures[object] = remaining - 1
		}
		return f.failError
	}
	f.removed = append(f.removed, object)
	return nil
}

func (f *fakeStore) removals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

var seedSeq atomic.Uint64

func seedOwner(t *testing.T) *model.User {
	t.Helper()
	n := seedSeq.Add(1)
	user := model.User{
		UserName: fmt.Sprintf("swp_user_%d_%d", n, time.Now().UnixNano()),
		Password: "x",
		Email:    fmt.Sprintf("swp_%d_%d@test.local", n, time.Now().UnixNano()),
	}
	if err := repo.Db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return &user
}

func seedFile(t *testing.T, ownerID uint64, expiresAt *time.Time) *model.File {
	t.Helper()
	n := seedSeq.Add(1)
	file := model.File{
		OwnerID:    ownerID,
		Filename:   "doomed.bin",
		Size:       1,
		BucketName: "test-bucket",
		ObjectName: fmt.Sprintf("sweep/obj-%d", n),
		ExpiresAt:  expiresAt,
	}
	if err := repo.Db.Create(&file).Error; err != nil {
		t.Fatal(err)
	}
	return &file
}

func seedLink(t *testing.T, fileID uint64, expiresAt *time.Time, active bool) *model.ShareLink {
	t.Helper()
	link := model.ShareLink{
		FileID:    fileID,
		Token:     utils.NewShareToken(),
		ExpiresAt: expiresAt,
		IsActive:  active,
	}
	if err := repo.Db.Create(&link).Error; err != nil {
		t.Fatal(err)
	}
	return &link
}

func testSweeper(store storage.Store) *Sweeper {
	return New(repo.Db, store, 5*time.Second, 10, utils.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond})
}

func pastTime(d time.Duration) *time.Time {
	at := time.Now().Add(-d)
	return &at
}

// TestSweepDeactivatesExpiredLinks tests link tombstoning.
func TestSweepDeactivatesExpiredLinks(t *testing.T) {
	owner := seedOwner(t)
	file := seedFile(t, owner.ID, nil)
	expired := seedLink(t, file.ID, pastTime(time.Hour), true)
	live := seedLink(t, file.ID, nil, true)

	stats, err := testSweeper(newFakeStore()).SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.LinksDeactivated < 1 {
		t.Fatalf("expected at least 1 deactivation, got %d", stats.LinksDeactivated)
	}

	var got model.ShareLink
	if err := repo.Db.First(&got, expired.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.IsActive {
		t.Fatal("expired link still active")
	}
	if err := repo.Db.First(&got, live.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !got.IsActive {
		t.Fatal("unexpired link was deactivated")
	}
}

// TestSweepDeletesExpiredFiles tests blob-then-row reclamation.
func TestSweepDeletesExpiredFiles(t *testing.T) {
	owner := seedOwner(t)
	doomed := seedFile(t, owner.ID, pastTime(time.Hour))
	keeper := seedFile(t, owner.ID, nil)
	link := seedLink(t, doomed.ID, nil, true)

	store := newFakeStore()
	stats, err := testSweeper(store).SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.FilesDeleted < 1 {
		t.Fatalf("expected a deleted file, got %+v", stats)
	}

	if err := repo.Db.First(&model.File{}, doomed.ID).Error; err == nil {
		t.Fatal("expired file row survived the sweep")
	}
	if err := repo.Db.First(&model.File{}, keeper.ID).Error; err != nil {
		t.Fatal("unexpired file row vanished")
	}
	// The file's links go with it.
	if err := repo.Db.First(&model.ShareLink{}, link.ID).Error; err == nil {
		t.Fatal("cascade delete left the link behind")
	}

	found := false
	for _, obj := range store.removals() {
		if obj == doomed.ObjectName {
			found = true
		}
	}
	if !found {
		t.Fatal("blob was never removed")
	}
}

// TestSweepGraceWindow tests that freshly expired files get a head start.
func TestSweepGraceWindow(t *testing.T) {
	owner := seedOwner(t)
	// Expired, but within the one-interval grace window.
	fresh := seedFile(t, owner.ID, pastTime(100*time.Millisecond))

	if _, err := testSweeper(newFakeStore()).SweepOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if err := repo.Db.First(&model.File{}, fresh.ID).Error; err != nil {
		t.Fatal("file inside the grace window was reaped")
	}
}

// TestSweepKeepsMetadataWhenDeleteFails tests the retry-next-sweep path.
func TestSweepKeepsMetadataWhenDeleteFails(t *testing.T) {
	owner := seedOwner(t)
	file := seedFile(t, owner.ID, pastTime(time.Hour))

	store := newFakeStore()
	store.failures[file.ObjectName] = -1 // fail forever

	sw := testSweeper(store)
	stats, err := sw.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.FailedDeletes != 1 {
		t.Fatalf("expected 1 failed delete, got %d", stats.FailedDeletes)
	}
	if err := repo.Db.First(&model.File{}, file.ID).Error; err != nil {
		t.Fatal("metadata must survive a failed blob delete")
	}

	// Backend heals; the next sweep finishes the job.
	store.mu.Lock()
	store.failures[file.ObjectName] = 0
	store.mu.Unlock()

	if _, err := sw.SweepOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if err := repo.Db.First(&model.File{}, file.ID).Error; err == nil {
		t.Fatal("metadata should be gone once the blob delete succeeds")
	}
}

// TestSweepTreatsMissingBlobAsDeleted tests idempotent removal.
func TestSweepTreatsMissingBlobAsDeleted(t *testing.T) {
	owner := seedOwner(t)
	file := seedFile(t, owner.ID, pastTime(time.Hour))

	store := newFakeStore()
	store.notFound[file.ObjectName] = true

	stats, err := testSweeper(store).SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.FailedDeletes != 0 {
		t.Fatalf("missing blob counted as failure: %+v", stats)
	}
	if err := repo.Db.First(&model.File{}, file.ID).Error; err == nil {
		t.Fatal("row should be deleted when the blob is already gone")
	}
}

// TestSweepRetriesTransientFailures tests bounded in-sweep retry.
func TestSweepRetriesTransientFailures(t *testing.T) {
	owner := seedOwner(t)
	file := seedFile(t, owner.ID, pastTime(time.Hour))

	store := newFakeStore()
	store.failures[file.ObjectName] = 2 // third attempt succeeds

	stats, err := testSweeper(store).SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.FailedDeletes != 0 || stats.FilesDeleted < 1 {
		t.Fatalf("retry should have recovered: %+v", stats)
	}
}

// TestSweepBoundsBatches tests that one pass touches at most one batch.
func TestSweepBoundsBatches(t *testing.T) {
	owner := seedOwner(t)
	file := seedFile(t, owner.ID, nil)
	const total = 15
	for i := 0; i < total; i++ {
		seedLink(t, file.ID, pastTime(time.Hour), true)
	}

	sw := New(repo.Db, newFakeStore(), 5*time.Second, 10, utils.RetryPolicy{MaxAttempts: 1})
	stats, err := sw.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats.LinksDeactivated > 10 {
		t.Fatalf("batch bound ignored: deactivated %d", stats.LinksDeactivated)
	}

	var remaining int64
	if err := repo.Db.Model(&model.ShareLink{}).
		Where("file_id = ? AND is_active = ?", file.ID, true).
		Count(&remaining).Error; err != nil {
		t.Fatal(err)
	}
	if remaining < total-10 {
		t.Fatalf("first sweep overshot the batch: %d links still active", remaining)
	}

	// Leftovers are picked up by later sweeps.
	for i := 0; i < 2; i++ {
		if _, err := sw.SweepOnce(context.Background()); err != nil {
			t.Fatalf("follow-up sweep failed: %v", err)
		}
	}
	if err := repo.Db.Model(&model.ShareLink{}).
		Where("file_id = ? AND is_active = ?", file.ID, true).
		Count(&remaining).Error; err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Fatalf("backlog never drained: %d links still active", remaining)
	}
}
