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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hostelgate/hostelgate/internal/services"
	"github.com/hostelgate/hostelgate/internal/types"
	"github.com/hostelgate/hostelgate/internal/utils"
)

// UploadHandler accepts applicant documents
type UploadHandler struct {
	Store *services.UploadStore
}

// Upload handles POST /api/uploads
// @Summary Upload a document
// @Description Store a JPEG, PNG or PDF file and return its path and URL
// @Tags Uploads
// @Accept mpfd
// @Produce json
// @Param file formData file true "Document"
// @Success 201 {object} utils.SuccessResponseStruct{data=services.Upload}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return utils.HandleError(c, types.NewValidationError(map[string]string{"file": "A multipart file field named file is required"}))
	}
	upload, err := h.Store.Save(fh)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.MessageResponse(c, upload, "File uploaded", fiber.StatusCreated)
}
