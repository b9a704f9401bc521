package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/merge"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/barrosyan/sistema-pronto/models/reports"
	"github.com/barrosyan/sistema-pronto/tabular"
	"github.com/barrosyan/sistema-pronto/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type server struct {
	db       func() *gorm.DB
	sessions *merge.SessionStore
	notifier utils.Notifier
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func newServer(db func() *gorm.DB) *server {
	return &server{
		db:       db,
		sessions: merge.NewSessionStore(config.MergeSessionTTL()),
		notifier: utils.NewNotifier(),
		tracer:   tracer,
		logger:   config.GetLogger(),
	}
}

func currentUserId(c *gin.Context) string {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	return userId
}

func correlationId(c *gin.Context) string {
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	return cid
}

// writeError maps domain errors to status codes. Store failures without a
// user facing meaning are logged and hidden.
func (s *server) writeError(c *gin.Context, funcName string, err error) {
	var (
		unsupported *tabular.UnsupportedFormatError
		parseErr    *tabular.ParseError
		joinErr     *merge.JoinConfigError
		validation  validator.ValidationErrors
		backend     *models.BackendError
	)
	switch {
	case errors.Is(err, utils.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, utils.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, merge.ErrStaleResult):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
	case errors.As(err, &unsupported), errors.As(err, &parseErr), errors.As(err, &joinErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &backend):
		if backend.Code == models.CodeUniqueViolation {
			c.JSON(http.StatusConflict, gin.H{"error": backend.Message, "code": backend.Code})
			return
		}
		config.LogError(s.logger, "server.go", funcName, "backend error", correlationId(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": backend.Code})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// readUpload reads one multipart file within the configured size cap.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	limit := config.MaxUploadBytes()
	if fh.Size > limit {
		return nil, fmt.Errorf("%s exceeds the %dMB upload limit", fh.Filename, limit>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds the %dMB upload limit", fh.Filename, limit>>20)
	}
	return data, nil
}

// dataChanged drops cached reports of the caller and announces the change.
func (s *server) dataChanged(c *gin.Context, action, source string, campaigns []string, records int, objectKey string) {
	userId := currentUserId(c)
	reports.InvalidateOwnerReports(userId)
	utils.NotifyAsync(s.notifier, config.NotificationMessage{
		UserId:        userId,
		Action:        action,
		Source:        source,
		Campaigns:     campaigns,
		Records:       records,
		ObjectKey:     objectKey,
		CorrelationId: correlationId(c),
		OccurredAt:    time.Now().UTC(),
	})
}
