package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/services"
)

type ReportController struct {
	reports     *services.ReportService
	attachments *services.AttachmentService
}

func NewReportController(reports *services.ReportService, attachments *services.AttachmentService) *ReportController {
	return &ReportController{reports: reports, attachments: attachments}
}

// SubmitReport turns the draft into a pending report
func (r *ReportController) SubmitReport(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	report, err := r.reports.Submit(ctx, c.Param("id"), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetAllReports lists every submitted report, newest first
func (r *ReportController) GetAllReports(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	reports, err := r.reports.List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetPreview streams a staged photo or video to the draft's owner, or a
// submitted report's file to any tenant
func (r *ReportController) GetPreview(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	f, err := r.attachments.OpenPreview(c.Request.Context(), id, c.Query("draft"), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", mtype.String())
	c.Header("Cache-Control", "private, max-age=3600")
	http.ServeContent(c.Writer, c.Request, id, time.Time{}, f)
}
