package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/messagely/apiserver/types"
)

// ArchiveWriter stores a JSON document under key. *storage.Storage
// implements it.
type ArchiveWriter interface {
	PutJSON(ctx context.Context, key string, v any) error
}

// ArchiveService exports a user's inbox and outbox to object storage.
type ArchiveService struct {
	users  *UserService
	writer ArchiveWriter
	now    func() time.Time
}

func NewArchiveService(users *UserService, writer ArchiveWriter) *ArchiveService {
	return &ArchiveService{users: users, writer: writer, now: time.Now}
}

// ArchiveKey is archives/<username>/<UTC timestamp>.json. The username is
// escaped into a single key segment, dots included, so it can never name a
// parent or sibling prefix.
func ArchiveKey(username string, at time.Time) string {
	segment := strings.ReplaceAll(url.PathEscape(username), ".", "%2E")
	return fmt.Sprintf("archives/%s/%s.json", segment, at.UTC().Format("20060102T150405Z"))
}

// Export writes the archive and returns its object key. Unknown users yield
// store.ErrNotFound.
func (s *ArchiveService) Export(ctx context.Context, username string) (string, error) {
	if _, err := s.users.Get(ctx, username); err != nil {
		return "", fmt.Errorf("archive %s: %w", username, err)
	}
	sent, err := s.users.MessagesFrom(ctx, username)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", username, err)
	}
	received, err := s.users.MessagesTo(ctx, username)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", username, err)
	}

	archive := types.Archive{
		Username:   username,
		ExportedAt: s.now().UTC(),
		Sent:       sent,
		Received:   received,
	}
	key := ArchiveKey(username, archive.ExportedAt)
	if err := s.writer.PutJSON(ctx, key, archive); err != nil {
		return "", fmt.Errorf("write archive %s: %w", key, err)
	}
	return key, nil
}
