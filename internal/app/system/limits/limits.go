// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxAnnouncementFormSize is the maximum size for announcement create
	// and edit form submissions (body HTML plus metadata).
	MaxAnnouncementFormSize = 1 << 20 // 1 MB

	// MaxAttachmentSize is the per-file maximum for announcement
	// attachments parsed with ParseMultipartForm.
	MaxAttachmentSize = 10 << 20 // 10 MB

	// MaxAttachmentsPerPost caps how many files a single announcement
	// can carry.
	MaxAttachmentsPerPost = 5

	// MaxProfileFormSize is the maximum size for signup and profile form
	// submissions.
	MaxProfileFormSize = 64 << 10 // 64 KB
)
