package middleware

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadedFile is what the upload layer hands to services: the file is
// already on disk, services only ever see the path.
type UploadedFile struct {
	Name     string
	FilePath string
	MimeType string
	FileSize int64
}

// UploadRule constrains what a given endpoint accepts.
type UploadRule struct {
	Subdir    string   // subdirectory under the uploads root
	MaxBytes  int64    // 0 = unlimited
	MimeTypes []string // accepted prefixes, e.g. "image/", "application/pdf"
}

// ImageRule returns the UploadRule for image uploads.
func ImageRule(maxMB int64) UploadRule {
	return UploadRule{Subdir: "images", MaxBytes: maxMB << 20, MimeTypes: []string{"image/"}}
}

// DocumentRule returns the UploadRule for document uploads.
func DocumentRule(maxMB int64) UploadRule {
	return UploadRule{Subdir: "documents", MaxBytes: maxMB << 20, MimeTypes: []string{"application/pdf"}}
}

// SaveUpload stores the named form file under root/rule.Subdir with a
// uuid-based filename and returns its metadata. The boolean result is false
// when the request carried no usable file; the error message is already
// client-presentable.
func SaveUpload(c *gin.Context, field, root string, rule UploadRule) (*UploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, errNoFile
	}

	if rule.MaxBytes > 0 && header.Size > rule.MaxBytes {
		return nil, errFileTooLarge
	}
	if !mimeAllowed(header, rule.MimeTypes) {
		return nil, errBadFileType
	}

	dir := filepath.Join(root, rule.Subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	dst := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(header, dst); err != nil {
		return nil, err
	}

	return &UploadedFile{
		Name:     header.Filename,
		FilePath: dst,
		MimeType: header.Header.Get("Content-Type"),
		FileSize: header.Size,
	}, nil
}

func mimeAllowed(header *multipart.FileHeader, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	ct := header.Header.Get("Content-Type")
	for _, p := range prefixes {
		if strings.HasPrefix(ct, p) {
			return true
		}
	}
	return false
}

type uploadError string

func (e uploadError) Error() string { return string(e) }

const (
	errNoFile       = uploadError("no file uploaded")
	errFileTooLarge = uploadError("file exceeds the size limit")
	errBadFileType  = uploadError("unsupported file type")
)

// IsUploadError reports whether err is a client-side upload problem rather
// than a server failure.
func IsUploadError(err error) bool {
	_, ok := err.(uploadError)
	return ok
}
