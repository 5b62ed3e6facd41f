package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/resume"
)

const (
	customJDID       = "CUSTOM"
	customJDTitle    = "Custom JD"
	allJDs           = "ALL"
	snippetLength    = 400
	resultFilePrefix = "resume_scores_"
)

type errorResponse struct {
	Error string `json:"error"`
}

type listJDsResponse struct {
	DefaultJDs []jd.JobDescription `json:"default_jds"`
	SavedJDs   []jd.JobDescription `json:"saved_jds"`
}

type addJDRequest struct {
	Title   string `form:"title" json:"title"`
	JDTitle string `form:"jd_title" json:"jd_title"`
	JDText  string `form:"jd_text" json:"jd_text"`
	Skills  string `form:"skills" json:"skills"`
	Roles   string `form:"roles" json:"roles"`
}

type analyzeResponse struct {
	Results          []report.Summary `json:"results"`
	DownloadURL      string           `json:"download_url"`
	ExtractedSnippet *string          `json:"extracted_snippet"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func (s *Server) listJDs(c *gin.Context) {
	saved, err := s.deps.Store.Load()
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to load saved job descriptions")
		return
	}
	if saved == nil {
		saved = []jd.JobDescription{}
	}

	c.JSON(http.StatusOK, listJDsResponse{DefaultJDs: jd.Defaults(), SavedJDs: saved})
}

func (s *Server) addJD(c *gin.Context) {
	var req addJDRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	title := firstNonEmpty(req.Title, req.JDTitle, customJDTitle)
	text := strings.TrimSpace(req.JDText)
	if text == "" && strings.TrimSpace(req.Skills) == "" {
		abort(c, http.StatusBadRequest, "Provide jd_text or skills")
		return
	}

	var skills jd.SkillExtractor = s.deps.Skills
	if strings.TrimSpace(req.Skills) != "" {
		skills = jd.StaticSkills(jd.SplitList(req.Skills))
	}

	j, err := jd.FromText(c.Request.Context(), skills, "", title, text)
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to extract skills")
		return
	}
	if roles := jd.SplitList(req.Roles); len(roles) > 0 {
		j.Roles = roles
	}

	saved, err := s.deps.Store.Add(j)
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to save job description")
		return
	}

	s.requestLogger(c).Info("job description saved", zap.String("jd_id", saved.ID), zap.Int("skills", len(saved.Skills)))
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (s *Server) analyze(c *gin.Context) {
	ctx := c.Request.Context()
	log := s.requestLogger(c)

	records, err := s.resumes(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	for _, r := range records {
		if r.Err != nil {
			log.Warn("resume document is unreadable, scoring it as empty", zap.String(logger.FieldResumeID, r.ID), zap.Error(r.Err))
		}
	}

	jds, err := s.selectJDs(c)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	parsed, err := s.deps.Extractor.ParseAll(ctx, records)
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to parse resumes")
		return
	}

	results, err := s.deps.Scorer.ScoreAll(ctx, parsed, jds)
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to score resumes")
		return
	}

	name := resultFilePrefix + uuid.NewString() + ".csv"
	if err := report.WriteFile(filepath.Join(s.cfg.DownloadDir, name), results); err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to store results")
		return
	}

	top, err := filtering.Run(ctx, &filtering.Config{TopPerJD: s.cfg.TopK}, filtering.Deps{Logger: log}, []filtering.Filter{filtering.NewTopPerJD()}, results)
	if err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "failed to rank results")
		return
	}

	resp := analyzeResponse{
		Results:     report.GroupByJD(top, jds),
		DownloadURL: "/download/" + name,
	}
	if len(records) == 1 {
		snippet := jd.TruncateRunes(records[0].Text, snippetLength)
		resp.ExtractedSnippet = &snippet
	}

	log.Info("analysis finished",
		zap.Int("resumes", len(records)),
		zap.Int("jds", len(jds)),
		zap.String("result_file", name),
	)

	c.JSON(http.StatusOK, resp)
}

// resumes loads the default dataset or the uploaded resume_csv file.
func (s *Server) resumes(c *gin.Context) ([]resume.Record, error) {
	if isChecked(c.PostForm("use_default_dataset")) {
		if s.cfg.Dataset == "" {
			return nil, errors.New("default dataset is not configured")
		}
		records, err := resume.LoadFile(s.cfg.Dataset)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("default dataset not found at %s", s.cfg.Dataset)
		}
		return records, err
	}

	header, err := c.FormFile("resume_csv")
	if err != nil {
		return nil, errors.New("no resume file uploaded and default dataset not selected")
	}
	if header.Filename == "" {
		return nil, errors.New("empty filename")
	}

	data, err := readUpload(header)
	if err != nil {
		return nil, err
	}

	return resume.Load(header.Filename, data)
}

// selectJDs picks the job descriptions of a request: free text first, then an
// uploaded table, then a saved or default id. Anything else scores against the
// default set.
func (s *Server) selectJDs(c *gin.Context) ([]jd.JobDescription, error) {
	if text := strings.TrimSpace(c.PostForm("jd_text")); text != "" {
		j, err := jd.FromText(c.Request.Context(), s.deps.Skills, customJDID, customJDTitle, text)
		if err != nil {
			return nil, fmt.Errorf("extracting skills from jd_text: %w", err)
		}
		return []jd.JobDescription{j}, nil
	}

	if header, err := c.FormFile("jd_csv"); err == nil && header.Filename != "" {
		data, err := readUpload(header)
		if err != nil {
			return nil, err
		}
		jds, err := jd.ReadCSV(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(jds) > 0 {
			return jds, nil
		}
	}

	if id := strings.TrimSpace(c.PostForm("jd_select")); id != "" && id != allJDs {
		saved, err := s.deps.Store.Load()
		if err != nil {
			s.requestLogger(c).Warn("saved job descriptions are unavailable", zap.Error(err))
		}
		if j, ok := jd.Find(id, saved, jd.Defaults()); ok {
			return []jd.JobDescription{j}, nil
		}
	}

	return jd.Defaults(), nil
}

func (s *Server) download(c *gin.Context) {
	name := c.Param("name")
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		abort(c, http.StatusNotFound, "File not found")
		return
	}

	path := filepath.Join(s.cfg.DownloadDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		abort(c, http.StatusNotFound, "File not found")
		return
	}

	c.FileAttachment(path, name)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", header.Filename, err)
	}
	return data, nil
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
