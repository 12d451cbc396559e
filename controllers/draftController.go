package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/services"
)

type DraftController struct {
	drafts      *services.DraftService
	attachments *services.AttachmentService
	locations   *services.LocationService
}

func NewDraftController(drafts *services.DraftService, attachments *services.AttachmentService, locations *services.LocationService) *DraftController {
	return &DraftController{drafts: drafts, attachments: attachments, locations: locations}
}

// CreateDraft starts an empty report for the tenant
func (d *DraftController) CreateDraft(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}
	draft, err := d.drafts.Create(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (d *DraftController) GetDraft(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}
	draft, err := d.drafts.Get(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateDraft changes any of title, description, category, location, urgency
func (d *DraftController) UpdateDraft(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}

	var input models.DraftUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := d.drafts.Update(c.Request.Context(), c.Param("id"), owner, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// DiscardDraft deletes the draft and its staged files
func (d *DraftController) DiscardDraft(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}
	if err := d.drafts.Discard(c.Request.Context(), c.Param("id"), owner); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

func (d *DraftController) AddPhotos(c *gin.Context) {
	d.addAttachments(c, models.KindPhoto)
}

func (d *DraftController) AddVideos(c *gin.Context) {
	d.addAttachments(c, models.KindVideo)
}

func (d *DraftController) addAttachments(c *gin.Context, kind models.AttachmentKind) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form with files"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	uploads := make([]services.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, toUpload(fh))
	}

	draft, rejected, err := d.attachments.Add(c.Request.Context(), c.Param("id"), owner, kind, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "rejected": rejected})
}

func toUpload(fh *multipart.FileHeader) services.Upload {
	return services.Upload{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadSeekCloser, error) { return fh.Open() },
	}
}

func (d *DraftController) RemoveAttachment(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}
	draft, err := d.attachments.Remove(c.Request.Context(), c.Param("id"), owner, c.Param("attachmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SetLocation records device coordinates and resolves them to an address
func (d *DraftController) SetLocation(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}

	var input struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := d.locations.Set(c.Request.Context(), c.Param("id"), owner, *input.Latitude, *input.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (d *DraftController) ClearLocation(c *gin.Context) {
	owner, ok := tenantID(c)
	if !ok {
		return
	}
	draft, err := d.locations.Clear(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
