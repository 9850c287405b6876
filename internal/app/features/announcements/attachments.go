// internal/app/features/announcements/attachments.go
package announcements

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/corkboardhq/corkboard/internal/app/system/limits"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// uploadAttachment stores one file under a unique key and returns its
// attachment record. The key is attachments/YYYY/MM/uuid-filename.
func uploadAttachment(ctx context.Context, store storage.Store, fh *multipart.FileHeader) (models.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	now := time.Now().UTC()
	dateDir := fmt.Sprintf("attachments/%04d/%02d", now.Year(), now.Month())
	name := sanitizeFilename(fh.Filename)
	key := filepath.ToSlash(filepath.Join(dateDir,
		fmt.Sprintf("%s-%s", uuid.New().String()[:8], name)))

	contentType := fh.Header.Get("Content-Type")
	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, key, f, opts); err != nil {
		return models.Attachment{}, fmt.Errorf("store attachment: %w", err)
	}

	return models.Attachment{
		Name:        name,
		Key:         key,
		Size:        fh.Size,
		ContentType: contentType,
	}, nil
}

// collectAttachments uploads every file in the "attachments" field, capped
// at MaxAttachmentsPerPost files of MaxAttachmentSize each.
func collectAttachments(ctx context.Context, store storage.Store, form *multipart.Form) ([]models.Attachment, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File["attachments"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > limits.MaxAttachmentsPerPost {
		return nil, fmt.Errorf("at most %d attachments per announcement", limits.MaxAttachmentsPerPost)
	}

	var out []models.Attachment
	for _, fh := range files {
		if fh.Size > limits.MaxAttachmentSize {
			return nil, fmt.Errorf("attachment %q is too large", fh.Filename)
		}
		a, err := uploadAttachment(ctx, store, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// sanitizeFilename strips path components and characters that are unsafe in
// storage keys and Content-Disposition headers.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "file"
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '.' || c == '-' || c == '_':
		return true
	}
	return false
}
