package upload

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"imagedrop/internal/domain/events"
	"imagedrop/internal/domain/intake"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(userID int64, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:upload_test_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Image{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func setupTestService(t *testing.T, opts ...intake.Option) (*Service, *fakePublisher, string) {
	t.Helper()
	dir := t.TempDir()
	pub := &fakePublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewRepository(setupTestDB(t)), dir, "/static/uploads", pub, log, opts...), pub, dir
}

func testZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		_, _ = fw.Write([]byte(body))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestIngestStoresImagesAndReportsRejections(t *testing.T) {
	svc, pub, dir := setupTestService(t)
	ctx := context.Background()
	now := time.Now()

	files := []intake.File{
		intake.NewMemoryFile("cover.png", "image/png", []byte("png-data"), now),
		intake.NewMemoryFile("notes.pdf", "application/pdf", []byte("pdf"), now),
		intake.NewMemoryFile("album.zip", "application/zip", testZip(t, map[string]string{
			"album/one.JPG":          "jpeg-1",
			"album/readme.txt":       "ignored",
			"__MACOSX/album/one.JPG": "ignored",
		}), now),
		intake.NewMemoryFile("broken.zip", "application/zip", []byte("nope"), now),
	}

	report, err := svc.Ingest(ctx, 42, files)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if len(report.Loaded) != 2 {
		t.Fatalf("expected 2 loaded images, got %d", len(report.Loaded))
	}
	if len(report.Invalid) != 1 || report.Invalid[0].Name != "notes.pdf" {
		t.Fatalf("expected notes.pdf to be invalid, got %+v", report.Invalid)
	}
	if len(report.Failed) != 1 || report.Failed[0].Name != "broken.zip" {
		t.Fatalf("expected broken.zip to fail, got %+v", report.Failed)
	}

	var fromArchive *Image
	for _, img := range report.Loaded {
		if img.BatchID != report.BatchID || img.UserID != 42 {
			t.Fatalf("unexpected ownership on %+v", img)
		}
		data, err := os.ReadFile(filepath.Join(dir, img.FilePath))
		if err != nil {
			t.Fatalf("stored file missing: %v", err)
		}
		if int64(len(data)) != img.Size {
			t.Fatalf("expected %d bytes on disk, got %d", img.Size, len(data))
		}
		if !strings.HasPrefix(img.FileURL, "/static/uploads/") {
			t.Fatalf("unexpected url %q", img.FileURL)
		}
		if img.Archive != "" {
			fromArchive = img
		}
	}
	if fromArchive == nil || fromArchive.Archive != "album.zip" || fromArchive.OriginalName != "album/one.JPG" {
		t.Fatalf("expected archive entry to be recorded, got %+v", fromArchive)
	}
	if fromArchive.MimeType != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", fromArchive.MimeType)
	}

	types := pub.types()
	if len(types) != 5 || types[len(types)-1] != events.TypeDone {
		t.Fatalf("expected 4 outcome events and a final done event, got %v", types)
	}

	batch, err := svc.ListByBatch(ctx, report.BatchID, 42)
	if err != nil || len(batch) != 2 {
		t.Fatalf("expected 2 images in batch, got %d (err=%v)", len(batch), err)
	}
	other, err := svc.ListByBatch(ctx, report.BatchID, 7)
	if err != nil || len(other) != 0 {
		t.Fatalf("expected no images for another user, got %d (err=%v)", len(other), err)
	}
}

func TestIngestRespectsPolicy(t *testing.T) {
	policy := intake.DefaultPolicy()
	policy.Image.MaxBytes = 4
	svc, _, _ := setupTestService(t, intake.WithPolicy(policy))

	report, err := svc.Ingest(context.Background(), 1, []intake.File{
		intake.NewMemoryFile("big.png", "image/png", []byte("12345"), time.Now()),
		intake.NewMemoryFile("ok.png", "image/png", []byte("123"), time.Now()),
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(report.Loaded) != 1 || report.Loaded[0].OriginalName != "ok.png" {
		t.Fatalf("expected only ok.png to load, got %+v", report.Loaded)
	}
	if len(report.Invalid) != 1 || report.Invalid[0].Reason != intake.ErrFileTooLarge.Error() {
		t.Fatalf("expected big.png to be too large, got %+v", report.Invalid)
	}
}

func TestIngestNoFiles(t *testing.T) {
	svc, _, _ := setupTestService(t)
	if _, err := svc.Ingest(context.Background(), 1, nil); err != ErrNoFiles {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestDataURLAndDelete(t *testing.T) {
	svc, _, dir := setupTestService(t)
	ctx := context.Background()

	report, err := svc.Ingest(ctx, 5, []intake.File{
		intake.NewMemoryFile("dot.png", "image/png", []byte("hello"), time.Now()),
	})
	if err != nil || len(report.Loaded) != 1 {
		t.Fatalf("Ingest failed: %v %+v", err, report)
	}
	img := report.Loaded[0]

	url, err := svc.DataURL(ctx, img.ID, 5)
	if err != nil {
		t.Fatalf("DataURL returned error: %v", err)
	}
	if url != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("unexpected data url %q", url)
	}

	if _, err := svc.DataURL(ctx, img.ID, 6); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(ctx, img.ID, 6); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}

	if err := svc.Delete(ctx, img.ID, 5); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, img.FilePath)); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}
	if _, err := svc.GetByID(ctx, img.ID, 5); err != ErrImageNotFound {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"photo.jpg", "photo"},
		{"album/sub/my photo.PNG", "my_photo"},
		{".png", "image"},
		{strings.Repeat("a", 60) + ".jpg", strings.Repeat("a", 40)},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
