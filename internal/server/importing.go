package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"compliancehq/internal/importer"
	"compliancehq/internal/utils"
	"compliancehq/pkg/types"
)

// Uploaded spreadsheets are parked in the bucket between the upload and
// run steps so the mapping form never has to round-trip file bytes.
const importUploadPrefix = "imports"

const maxImportBytes = 10 << 20 // 10 MiB

func (s *Service) handleGetImport(w http.ResponseWriter, r *http.Request) {
	data := &types.ImportPageData{
		BasePageData: types.BasePageData{Title: "Import Workers"},
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.import", data); err != nil {
		s.logger.WithError(err).Error("failed to render import page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostImportUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		s.logger.WithError(err).Info("import upload rejected")
		s.renderImportError(w, r, "The file is too large or the upload was malformed.")
		return
	}

	file, header, err := r.FormFile("spreadsheet")
	if err != nil {
		s.renderImportError(w, r, "Choose a spreadsheet to upload.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.WithError(err).Error("failed to read import upload")
		s.internalServerError(w)
		return
	}

	rows, err := importer.ReadRows(bytes.NewReader(data), header.Filename)
	if err != nil {
		s.logger.WithError(err).Info("unreadable spreadsheet uploaded")
		s.renderImportError(w, r, fmt.Sprintf("Could not read %q as a spreadsheet.", header.Filename))
		return
	}

	uploadKey := fmt.Sprintf("%s/%s/%s%s",
		importUploadPrefix, s.config.TenantID, utils.NanoIDSize(21), strings.ToLower(filepath.Ext(header.Filename)))

	if err := s.storage.Upload(ctx, uploadKey, header.Header.Get("Content-Type"), data); err != nil {
		s.logger.WithError(err).Error("failed to park import upload in storage")
		s.renderImportError(w, r, "Upload failed. Please try again.")
		return
	}

	guessed := importer.GuessMapping(rows[0])

	page := &types.ImportMappingPageData{
		BasePageData: types.BasePageData{Title: "Map Columns"},
		UploadKey:    uploadKey,
		FileName:     header.Filename,
		RowCount:     len(rows) - 1,
		NameColumns:  columnOptions(rows[0], guessed.Name),
		DateColumns:  columnOptions(rows[0], guessed.Date),
		TradeColumns: columnOptions(rows[0], guessed.Trade),
		PhoneColumns: columnOptions(rows[0], guessed.Phone),
	}

	if err := s.renderTemplate(w, r, "page.import.mapping", page); err != nil {
		s.logger.WithError(err).Error("failed to render import mapping page")
		s.internalServerError(w)
		return
	}
}

type importRunForm struct {
	UploadKey   string `form:"upload_key"`
	FileName    string `form:"file_name"`
	NameColumn  int    `form:"name_column"`
	DateColumn  int    `form:"date_column"`
	TradeColumn int    `form:"trade_column"`
	PhoneColumn int    `form:"phone_column"`
}

func (s *Service) handlePostImportRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.logger.WithError(err).Error("failed to parse import run form")
		s.renderImportError(w, r, "Invalid form payload.")
		return
	}

	var runForm = new(importRunForm)
	if err := decoder.Decode(runForm, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode import run form")
		s.internalServerError(w)
		return
	}

	if runForm.UploadKey == "" || !strings.HasPrefix(runForm.UploadKey, importUploadPrefix+"/"+s.config.TenantID+"/") {
		s.renderImportError(w, r, "The uploaded file could not be found. Please upload it again.")
		return
	}

	data, _, err := s.storage.Download(ctx, runForm.UploadKey)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch parked import upload")
		s.renderImportError(w, r, "The uploaded file could not be found. Please upload it again.")
		return
	}

	rows, err := importer.ReadRows(bytes.NewReader(data), runForm.UploadKey)
	if err != nil {
		s.logger.WithError(err).Error("parked import upload became unreadable")
		s.renderImportError(w, r, "The uploaded file could not be read. Please upload it again.")
		return
	}

	mapping := importer.ColumnMapping{
		Name:  runForm.NameColumn,
		Date:  runForm.DateColumn,
		Trade: runForm.TradeColumn,
		Phone: runForm.PhoneColumn,
	}

	result, runErr := importer.Run(ctx, s.subsRepo, s.config.TenantID, rows, mapping)

	// Best effort; an orphaned parked file is harmless.
	if err := s.storage.Delete(ctx, runForm.UploadKey); err != nil {
		s.logger.WithError(err).Warn("failed to remove parked import upload")
	}

	page := &types.ImportResultPageData{
		BasePageData:      types.BasePageData{Title: "Import Results"},
		FileName:          runForm.FileName,
		Imported:          result.Imported,
		SkippedDuplicates: result.SkippedDuplicates,
		SkippedBlank:      result.SkippedBlank,
		Incomplete:        result.Incomplete,
	}
	if runErr != nil {
		s.logger.WithError(runErr).Error("import run aborted")
		page.Error = "The import stopped early: " + runErr.Error()
	}

	if err := s.renderTemplate(w, r, "page.import.result", page); err != nil {
		s.logger.WithError(err).Error("failed to render import result page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) renderImportError(w http.ResponseWriter, r *http.Request, msg string) {
	data := &types.ImportPageData{
		BasePageData: types.BasePageData{Title: "Import Workers"},
		Error:        msg,
	}
	if err := s.renderTemplate(w, r, "page.import", data); err != nil {
		s.logger.WithError(err).Error("failed to render import page with error")
		s.internalServerError(w)
	}
}

func columnOptions(headers []string, selected int) []types.ImportColumnOption {
	options := make([]types.ImportColumnOption, 0, len(headers))
	for i, header := range headers {
		label := strings.TrimSpace(header)
		if label == "" {
			label = fmt.Sprintf("Column %d", i+1)
		}
		options = append(options, types.ImportColumnOption{
			Index:    i,
			Header:   label,
			Selected: i == selected,
		})
	}
	return options
}
