package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"imagedrop/internal/domain/events"
	"imagedrop/internal/domain/intake"
)

const (
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/static/uploads"
)

// Publisher receives live intake events.
type Publisher interface {
	Publish(userID int64, event events.Event)
}

// Service runs dropped files through the intake and keeps the accepted
// images on local disk with a record in the database.
type Service struct {
	repo       Repository
	baseDir    string // absolute path to uploads dir
	staticBase string // URL prefix for serving files
	publisher  Publisher
	log        *slog.Logger
	intakeOpts []intake.Option
}

func NewService(repo Repository, baseDir, staticBase string, publisher Publisher, log *slog.Logger, opts ...intake.Option) *Service {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:       repo,
		baseDir:    baseDir,
		staticBase: staticBase,
		publisher:  publisher,
		log:        log,
		intakeOpts: opts,
	}
}

// Ingest classifies files, extracts archives and stores every accepted
// image. Each outcome is published as it happens; the report is returned once
// the whole batch has been dispatched.
func (s *Service) Ingest(ctx context.Context, userID int64, files []intake.File) (*IngestReport, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	batchID := uuid.NewString()
	log := s.log.With("batch_id", batchID, "user_id", userID)

	opts := append([]intake.Option{}, s.intakeOpts...)
	opts = append(opts,
		intake.WithLogger(log),
		intake.WithIDFunc(func() string { return batchID }),
	)
	m := intake.NewManager(opts...)
	m.OnLoad = func(f intake.File, _ []intake.File) {
		s.publish(userID, events.TypeLoaded, batchID, fileEvent(f, nil))
	}
	m.OnInvalid = func(f intake.File, err error) {
		s.publish(userID, events.TypeInvalid, batchID, fileEvent(f, err))
	}
	m.OnFailed = func(f intake.File, err error) {
		log.Warn("intake failure", "file", f.Name(), "error", err)
		s.publish(userID, events.TypeFailed, batchID, fileEvent(f, err))
	}
	m.OnDone = func(summary intake.Summary) {
		s.publish(userID, events.TypeDone, batchID, summary)
	}

	results, err := m.HandleFiles(ctx, files, files).Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("intake batch %s: %w", batchID, err)
	}

	report := &IngestReport{
		BatchID: batchID,
		Loaded:  []*Image{},
		Invalid: []Rejection{},
		Failed:  []Rejection{},
	}
	for _, r := range results {
		switch r.Outcome {
		case intake.OutcomeLoaded:
			img, err := s.store(ctx, userID, batchID, r)
			if err != nil {
				log.Error("failed to store image", "file", r.File.Name(), "error", err)
				report.Failed = append(report.Failed, Rejection{Name: r.File.Name(), Archive: r.Archive, Reason: "failed to store image"})
				continue
			}
			report.Loaded = append(report.Loaded, img)
		case intake.OutcomeInvalid:
			report.Invalid = append(report.Invalid, rejection(r))
		case intake.OutcomeFailed:
			report.Failed = append(report.Failed, rejection(r))
		}
	}

	log.Info("intake batch stored",
		"loaded", len(report.Loaded),
		"invalid", len(report.Invalid),
		"failed", len(report.Failed),
	)
	return report, nil
}

func (s *Service) store(ctx context.Context, userID int64, batchID string, r intake.Result) (*Image, error) {
	src, err := r.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	// Build directory: uploads/YYYY/MM/DD/
	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(r.File.Name()))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		ext = mimeToExt(r.File.ContentType())
	}
	filename := fmt.Sprintf("%s_%s%s", id, sanitizeName(r.File.Name()), ext)

	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	relPath := filepath.Join(relDir, filename)
	fileURL := s.staticBase + "/" + strings.ReplaceAll(relPath, "\\", "/")

	img := &Image{
		ID:           id,
		BatchID:      batchID,
		UserID:       userID,
		OriginalName: r.File.Name(),
		Archive:      r.Archive,
		FilePath:     relPath,
		FileURL:      fileURL,
		MimeType:     r.File.ContentType(),
		Size:         r.File.Size(),
		LastModified: r.File.LastModified(),
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, img); err != nil {
		_ = os.Remove(absPath) // rollback file on DB error
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	return img, nil
}

// GetByID returns image metadata owned by userID.
func (s *Service) GetByID(ctx context.Context, id string, userID int64) (*Image, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img.UserID != userID {
		return nil, ErrNotOwner
	}
	return img, nil
}

// DataURL loads the stored image and encodes it as a data URL.
func (s *Service) DataURL(ctx context.Context, id string, userID int64) (string, error) {
	img, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, img.FilePath))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrImageNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	return intake.DataURL(intake.NewMemoryFile(img.OriginalName, img.MimeType, data, img.LastModified))
}

// Delete removes the physical file and the DB record.
func (s *Service) Delete(ctx context.Context, id string, userID int64) error {
	img, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	absPath := filepath.Join(s.baseDir, img.FilePath)
	_ = os.Remove(absPath) // file may already be gone

	return s.repo.Delete(ctx, id)
}

// ListByUser returns all images for a user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Image, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// ListByBatch returns the images a user stored from one drop.
func (s *Service) ListByBatch(ctx context.Context, batchID string, userID int64) ([]*Image, error) {
	images, err := s.repo.ListByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	owned := images[:0]
	for _, img := range images {
		if img.UserID == userID {
			owned = append(owned, img)
		}
	}
	return owned, nil
}

func (s *Service) publish(userID int64, eventType, batchID string, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(userID, events.Event{Type: eventType, BatchID: batchID, Payload: payload})
}

func fileEvent(f intake.File, err error) map[string]any {
	payload := map[string]any{
		"name":      f.Name(),
		"mime_type": f.ContentType(),
		"size":      f.Size(),
	}
	if err != nil {
		payload["reason"] = err.Error()
	}
	return payload
}

func rejection(r intake.Result) Rejection {
	reason := string(r.Outcome)
	if r.Err != nil {
		reason = r.Err.Error()
	}
	return Rejection{Name: r.File.Name(), Archive: r.Archive, Reason: reason}
}

func sanitizeName(name string) string {
	name = filepath.Base(filepath.ToSlash(name))
	name = strings.TrimSuffix(name, filepath.Ext(name)) // strip extension (added separately)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "image"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ".bin"
	}
}
