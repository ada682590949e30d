package server

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-ausbildung-automation/internal/browser"
	"go-ausbildung-automation/internal/dispatch"
	"go-ausbildung-automation/internal/documents"
	"go-ausbildung-automation/internal/letters"
	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/internal/scraper"
	"go-ausbildung-automation/utils"
)

type scrapeRequest struct {
	SearchTerm string `json:"searchTerm"`
	Location   string `json:"location"`
	Pages      int    `json:"pages"`
}

// handleScrape runs a full scrape synchronously. Per-item failures come back
// in the summary's errors array; only failing to start the browser is a 500.
func (s *Server) handleScrape(c *fiber.Ctx) error {
	var req scrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SearchTerm == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "searchTerm is required"})
	}
	if req.Pages <= 0 {
		req.Pages = s.cfg.Scraping.DefaultPages
	}

	mgr, err := browser.NewManager(c.Context(), siteOrigin(s.cfg.Scraping.BaseURL), s.cfg.Scraping.UserAgent)
	if err != nil {
		s.log.Errorw("failed to start browser", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to start browser: %v", err),
		})
	}
	defer mgr.Close()

	summary, err := scraper.New(&s.cfg.Scraping, s.repo, mgr, s.log).
		Run(c.Context(), req.SearchTerm, req.Location, req.Pages, currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// handleGenerateLetters takes a CV upload and generates letters for every
// eligible job of the caller.
func (s *Server) handleGenerateLetters(c *fiber.Ctx) error {
	file, err := c.FormFile("cv")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cv file is required"})
	}

	if err := utils.EnsureDirectory(s.cfg.Paths.CVUploadsDir); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	cvPath := filepath.Join(s.cfg.Paths.CVUploadsDir,
		fmt.Sprintf("%s_%s", uuid.NewString(), utils.CleanBaseFilename(file.Filename)))
	if err := c.SaveFile(file, cvPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store CV"})
	}

	gen := letters.NewGenerator(&s.cfg.Letters, s.cfg.Paths.OutputDir,
		s.repo, s.textgen, s.renderer, s.cv, s.log)
	count, err := gen.GenerateAll(c.Context(), cvPath, currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"generated": count})
}

func (s *Server) handleSendEmails(c *fiber.Ctx) error {
	sender, err := s.resolveSender(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	result, err := s.engine.SendForUser(c.Context(), currentUserID(c), sender)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

func (s *Server) handleListJobs(c *fiber.Ctx) error {
	jobs, err := s.repo.FindJobsByUser(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleReadyToSend(c *fiber.Ctx) error {
	jobs, err := s.repo.FindJobsReadyToSend(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleDeleteJob(c *fiber.Ctx) error {
	if err := s.repo.DeleteJob(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "job deleted"})
}

func (s *Server) handleUploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	storePath, err := s.docs.NewUploadPath(file.Filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.SaveFile(file, storePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store file"})
	}

	doc, err := s.docs.SaveUpload(c.Context(), currentUserID(c), documents.Upload{
		OriginalName: file.Filename,
		Path:         storePath,
		MimeType:     file.Header.Get("Content-Type"),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (s *Server) handleListDocuments(c *fiber.Ctx) error {
	docs, err := s.docs.List(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"documents": docs, "count": len(docs)})
}

// handleDownloadDocument re-checks file existence at download time; the file
// may have been deleted from disk after upload.
func (s *Server) handleDownloadDocument(c *fiber.Ctx) error {
	doc, err := s.docs.Get(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if !utils.FileExists(doc.FilePath) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "file no longer exists on disk"})
	}
	return c.Download(doc.FilePath, doc.OriginalName)
}

func (s *Server) handleDeleteDocument(c *fiber.Ctx) error {
	if err := s.docs.Delete(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "document deleted"})
}

type createCampaignRequest struct {
	Name        string   `json:"name"`
	SendType    string   `json:"sendType"`
	JobIDs      []string `json:"jobIds"`
	DocumentIDs []string `json:"documentIds"`
}

func (s *Server) handleCreateCampaign(c *fiber.Ctx) error {
	var req createCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || len(req.JobIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and jobIds are required"})
	}

	campaign, err := s.repo.CreateCampaign(c.Context(), &models.Campaign{
		UserID:      currentUserID(c),
		Name:        req.Name,
		SendType:    req.SendType,
		JobIDs:      req.JobIDs,
		DocumentIDs: req.DocumentIDs,
		TotalEmails: len(req.JobIDs),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(campaign)
}

func (s *Server) handleListCampaigns(c *fiber.Ctx) error {
	campaigns, err := s.repo.FindCampaignsByUser(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"campaigns": campaigns, "count": len(campaigns)})
}

func (s *Server) handleGetCampaign(c *fiber.Ctx) error {
	campaign, err := s.repo.GetCampaign(c.Context(), c.Params("id"), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(campaign)
}

func (s *Server) handleSendCampaign(c *fiber.Ctx) error {
	sender, err := s.resolveSender(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	sent, failed, err := s.engine.SendCampaign(c.Context(), c.Params("id"), currentUserID(c), sender)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"sent":   sent,
			"failed": failed,
		})
	}
	return c.JSON(fiber.Map{"sent": sent, "failed": failed})
}

type updateCampaignStatusRequest struct {
	Status models.CampaignStatus `json:"status"`
}

func (s *Server) handleUpdateCampaignStatus(c *fiber.Ctx) error {
	var req updateCampaignStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status is required"})
	}
	if _, err := s.repo.GetCampaign(c.Context(), c.Params("id"), currentUserID(c)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.repo.UpdateCampaignStatus(c.Context(), c.Params("id"), req.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "status updated"})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.repo.GetStats(c.Context(), currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

func (s *Server) resolveSender(c *fiber.Ctx) (dispatch.Sender, error) {
	user, err := s.repo.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return dispatch.Sender{}, err
	}
	return dispatch.Sender{
		Name:  fmt.Sprintf("%s %s", user.FirstName, user.LastName),
		Email: user.Email,
	}, nil
}

// siteOrigin reduces the configured search URL to scheme and host for
// resolving relative listing links.
func siteOrigin(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return baseURL
	}
	return u.Scheme + "://" + u.Host
}
