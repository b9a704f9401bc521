package main

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/merge"
	"github.com/barrosyan/sistema-pronto/tabular"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type mergeFile struct {
	Index    int               `json:"index"`
	Name     string            `json:"name"`
	Headers  []string          `json:"headers"`
	RowCount int               `json:"rowCount"`
	Preview  []*tabular.Record `json:"preview"`
	IsMain   bool              `json:"isMain"`
}

type mergeState struct {
	merge.Snapshot
	Files   []mergeFile    `json:"files"`
	Summary *merge.Summary `json:"summary,omitempty"`
}

type uploadFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type mergeConfigRequest struct {
	MainIndex           int            `json:"mainIndex"`
	Strategy            string         `json:"strategy"`
	KeyColumn           string         `json:"keyColumn"`
	SecondaryKeyColumns map[int]string `json:"secondaryKeyColumns"`
}

func stateOf(session *merge.Session) mergeState {
	snap := session.Snapshot()
	state := mergeState{Snapshot: snap, Files: make([]mergeFile, 0, len(snap.Files))}
	for i, f := range snap.Files {
		state.Files = append(state.Files, mergeFile{
			Index:    i,
			Name:     f.Name,
			Headers:  f.Headers,
			RowCount: f.RowCount,
			Preview:  f.Preview(merge.PreviewRows),
			IsMain:   i == snap.MainIndex,
		})
	}
	if snap.Result != nil {
		summary := snap.Result.Summary
		state.Summary = &summary
	}
	return state
}

func (s *server) session(c *gin.Context) *merge.Session {
	return s.sessions.Get(currentUserId(c))
}

func (s *server) getMergeState() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, stateOf(s.session(c)))
	}
}

// uploadMergeFiles parses every uploaded file on its own. Files that fail are
// reported and the rest are still added.
func (s *server) uploadMergeFiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with files is required"})
			return
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
			return
		}

		parsed := make([]*tabular.ParsedFile, 0, len(headers))
		failures := []uploadFailure{}
		for _, fh := range headers {
			data, err := readUpload(fh)
			if err == nil {
				var f *tabular.ParsedFile
				if f, err = tabular.Parse(fh.Filename, bytes.NewReader(data)); err == nil {
					parsed = append(parsed, f)
					continue
				}
			}
			config.LogError(s.logger, "server.go", "uploadMergeFiles", "parse upload", fh.Filename, err)
			failures = append(failures, uploadFailure{File: fh.Filename, Error: err.Error()})
		}

		session := s.session(c)
		if len(parsed) > 0 {
			session.AddFiles(parsed...)
		}
		status := http.StatusOK
		if len(parsed) == 0 {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"state": stateOf(session), "failures": failures})
	}
}

func (s *server) removeMergeFile() gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		session := s.session(c)
		if _, err := session.RemoveFile(index); err != nil {
			s.writeError(c, "removeMergeFile", err)
			return
		}
		c.JSON(http.StatusOK, stateOf(session))
	}
}

func (s *server) configureMerge() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mergeConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		strategy, err := merge.ParseStrategy(req.Strategy)
		if err != nil {
			s.writeError(c, "configureMerge", err)
			return
		}
		session := s.session(c)
		opts := merge.Options{Strategy: strategy, KeyColumn: req.KeyColumn, SecondaryKeyColumns: req.SecondaryKeyColumns}
		if _, err := session.Configure(req.MainIndex, opts); err != nil {
			s.writeError(c, "configureMerge", err)
			return
		}
		c.JSON(http.StatusOK, stateOf(session))
	}
}

func (s *server) previewMerge() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := s.tracer.Start(c.Request.Context(), "merge.preview")
		defer span.End()

		session := s.session(c)
		ticket, err := session.Begin()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.writeError(c, "previewMerge", err)
			return
		}
		span.SetAttributes(
			attribute.String("merge.strategy", string(ticket.Options.Strategy)),
			attribute.Int("merge.files", len(ticket.Secondaries)+1),
			attribute.Int("merge.main_rows", ticket.Main.RowCount),
		)
		result, err := merge.LeftJoin(ticket.Main, ticket.Secondaries, ticket.Options)
		if err == nil {
			err = session.Commit(ticket, result)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.writeError(c, "previewMerge", err)
			return
		}
		config.LogInfo(s.logger, "server.go", "previewMerge", "merge computed", map[string]any{
			"user_id":        currentUserId(c),
			"correlation_id": correlationId(c),
			"rows":           len(result.Records),
		})

		preview := result.Records
		if len(preview) > merge.PreviewRows {
			preview = preview[:merge.PreviewRows]
		}
		c.JSON(http.StatusOK, gin.H{
			"summary": result.Summary,
			"columns": tabular.Columns(result.Records, config.ExportUnionColumns()),
			"preview": preview,
			"total":   len(result.Records),
		})
	}
}

func (s *server) confirmMerge() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.session(c)
		if _, err := session.Confirm(); err != nil {
			s.writeError(c, "confirmMerge", err)
			return
		}
		c.JSON(http.StatusOK, stateOf(session))
	}
}

// exportMerge streams the merged records as csv or xlsx. When archiving is on
// a copy goes to cloud storage and its signed link is returned in headers.
func (s *server) exportMerge() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.session(c)
		result, err := session.Exportable()
		if err != nil {
			s.writeError(c, "exportMerge", err)
			return
		}

		opts := tabular.ExportOptions{UnionColumns: config.ExportUnionColumns()}
		var (
			buf         bytes.Buffer
			fileName    string
			contentType string
		)
		switch format := c.DefaultQuery("format", "csv"); format {
		case "csv":
			fileName, contentType = tabular.DefaultExportName+".csv", tabular.ContentTypeCSV
			err = tabular.WriteCSV(&buf, result.Records, opts)
		case "xlsx":
			fileName, contentType = tabular.DefaultExportName+".xlsx", tabular.ContentTypeXLSX
			err = tabular.WriteXLSX(&buf, result.Records, opts)
		default:
			err = errors.New("format must be csv or xlsx")
		}
		if err != nil {
			s.writeError(c, "exportMerge", err)
			return
		}

		objectKey := ""
		if utils.ArchiveEnabled() && (config.ArchiveExportsEnabled() || c.Query("archive") == "true") {
			archived, err := utils.ArchiveExport(c.Request.Context(), currentUserId(c), fileName, contentType, buf.Bytes())
			if err != nil {
				config.LogError(s.logger, "server.go", "exportMerge", "archive export", fileName, err)
			} else {
				objectKey = archived.ObjectKey
				c.Header("X-Export-Object-Key", archived.ObjectKey)
				c.Header("X-Export-Url", archived.DownloadURL)
			}
		}
		s.dataChanged(c, config.NotificationActionExport, fileName, nil, len(result.Records), objectKey)

		c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

func (s *server) resetMerge() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.session(c)
		session.Reset()
		c.JSON(http.StatusOK, stateOf(session))
	}
}

// deleteArchivedExport removes one of the caller's archived exports.
func (s *server) deleteArchivedExport() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Query("key"))
		if !strings.HasPrefix(key, "exports/"+currentUserId(c)+"/") || strings.Contains(key, "..") {
			s.writeError(c, "deleteArchivedExport", utils.ErrorForbidden)
			return
		}
		if !utils.ArchiveEnabled() {
			c.JSON(http.StatusNotFound, gin.H{"error": "export archive is not configured"})
			return
		}
		if err := utils.DeleteFromGCS(c.Request.Context(), key); err != nil {
			config.LogError(s.logger, "server.go", "deleteArchivedExport", "delete object", key, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not delete export"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
