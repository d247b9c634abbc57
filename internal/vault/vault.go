// Package vault stores uploaded evidence under a subject-scoped path and
// serves it back only to the owning subject or an administrator. Evidence is
// personally identifying, so this package is the single choke point for file
// access; nothing else reads the upload directory.
package vault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "veriflow/pkg/domain-errors"
)

// MaxFileBytes caps a single evidence file at 50 MiB.
const MaxFileBytes int64 = 50 << 20

// contentTypes maps permitted evidence extensions to the content type served
// on retrieval. Extensions outside this set are rejected at upload; files
// that somehow carry another extension are served as generic binary.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

const genericContentType = "application/octet-stream"

// Handle is an opaque reference to a stored file, resolvable only through
// Open. It looks like a URL path but is never directly browsable.
type Handle struct {
	SubjectID string
	Name      string
}

// URLPath renders the handle as the retrieval endpoint path.
func (h Handle) URLPath() string {
	return fmt.Sprintf("/api/employee/verification/file/%s/%s", h.SubjectID, h.Name)
}

// Vault is a local-disk evidence store rooted at a private directory.
type Vault struct {
	root   string
	logger *slog.Logger
}

// New creates the vault root if absent and returns the vault.
func New(root string, logger *slog.Logger) (*Vault, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create vault root %s: %w", root, err)
	}
	return &Vault{root: root, logger: logger}, nil
}

// Store validates and persists one evidence file for the subject, returning
// its handle. The stored name combines a timestamp and a random suffix so
// concurrent uploads from the same subject never collide, and handles are
// never re-issued for the same stored file.
func (v *Vault) Store(ctx context.Context, subjectID, originalName string, size int64, src io.Reader) (Handle, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := contentTypes[ext]; !ok {
		return Handle{}, dErrors.New(dErrors.CodeInvalidUpload, fmt.Sprintf("file type %q is not allowed", ext))
	}
	if size <= 0 {
		return Handle{}, dErrors.New(dErrors.CodeInvalidUpload, "file is empty")
	}
	if size > MaxFileBytes {
		return Handle{}, dErrors.New(dErrors.CodeInvalidUpload, "file exceeds the 50 MiB limit")
	}

	name := fmt.Sprintf("%s_%s_%s",
		time.Now().UTC().Format("20060102150405"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		sanitizeName(originalName),
	)

	dir := filepath.Join(v.root, subjectID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeInternal, "create subject directory", err)
	}

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeInternal, "create evidence file", err)
	}
	defer dst.Close()

	// The declared size passed validation; the copy is still capped in case
	// the stream disagrees with the declaration.
	written, err := io.Copy(dst, io.LimitReader(src, MaxFileBytes+1))
	if err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeInternal, "write evidence file", err)
	}
	if written > MaxFileBytes {
		_ = os.Remove(dst.Name())
		return Handle{}, dErrors.New(dErrors.CodeInvalidUpload, "file exceeds the 50 MiB limit")
	}

	v.logger.DebugContext(ctx, "evidence stored",
		"subject_id", subjectID,
		"name", name,
		"bytes", written,
	)
	return Handle{SubjectID: subjectID, Name: name}, nil
}

// Open returns the file bytes and content type for a stored handle. Only the
// owning subject or an administrator may read it; the ownership check runs
// before any filesystem access so non-owners learn nothing about existence.
func (v *Vault) Open(ctx context.Context, requesterSubjectID string, requesterIsAdmin bool, subjectID, name string) (io.ReadCloser, string, error) {
	if !requesterIsAdmin && requesterSubjectID != subjectID {
		return nil, "", dErrors.New(dErrors.CodeForbidden, "not the owner of this file")
	}
	if name != sanitizeName(name) || strings.Contains(subjectID, "/") || strings.Contains(subjectID, "..") {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "file not found")
	}

	f, err := os.Open(filepath.Join(v.root, subjectID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "file not found")
		}
		return nil, "", dErrors.Wrap(dErrors.CodeInternal, "open evidence file", err)
	}

	return f, ContentTypeFor(name), nil
}

// ContentTypeFor derives the served content type from a stored name.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return genericContentType
}

// sanitizeName strips any path components from a client-supplied file name.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "upload"
	}
	return name
}
