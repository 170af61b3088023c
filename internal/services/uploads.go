// uploads.go
//
// HostelGate: admissions, residency and fee management for a charitable hostel trust
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of hostelgate.
// hostelgate is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// hostelgate is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with hostelgate.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hostelgate/hostelgate/internal/types"
)

// allowedUploads maps a sniffed content type to the stored file extension
var allowedUploads = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// sniffLen is how much of an upload is read for content detection
const sniffLen = 3072

func detectUpload(head []byte) (string, string, bool) {
	mtype := mimetype.Detect(head)
	for contentType, ext := range allowedUploads {
		if mtype.Is(contentType) {
			return contentType, ext, true
		}
	}
	return mtype.String(), "", false
}

// UploadStore keeps applicant documents on local disk
type UploadStore struct {
	Dir      string
	MaxBytes int64
	BaseURL  string
}

// Upload describes a stored file
type Upload struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Save stores one multipart file under a generated name
func (s *UploadStore) Save(fh *multipart.FileHeader) (*Upload, error) {
	if fh == nil {
		return nil, types.NewValidationError(map[string]string{"file": "File is required"})
	}
	if fh.Size <= 0 {
		return nil, types.NewValidationError(map[string]string{"file": "File is empty"})
	}
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return nil, types.NewValidationError(map[string]string{
			"file": fmt.Sprintf("File must be at most %d bytes", s.MaxBytes),
		})
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType, ext, ok := detectUpload(head[:n])
	if !ok {
		return nil, types.NewValidationError(map[string]string{"file": "Only JPEG, PNG and PDF files are accepted"})
	}

	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	dest, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(dest, io.MultiReader(bytes.NewReader(head[:n]), src))
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filepath.Join(s.Dir, name))
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return &Upload{
		Path:        "/uploads/" + name,
		URL:         s.BaseURL + "/uploads/" + name,
		FileName:    filepath.Base(fh.Filename),
		ContentType: contentType,
		Size:        written,
	}, nil
}
