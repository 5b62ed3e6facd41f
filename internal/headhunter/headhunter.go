package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
)

const (
	apiURL           = "https://api.hh.ru"
	vacancyPath      = "/vacancies/%s"
	DefaultUserAgent = "spigell/resume-ranker (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = "100"
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New returns a client for the public hh.ru API. The token is optional since
// vacancy search does not require authorization.
func New(ctx context.Context, l *zap.Logger, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  strings.TrimSpace(token),
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger.WithFields(l),
		UserAgent: DefaultUserAgent,
	}
}

func (c *Client) Search(params *SearchParams) (*Vacancies, error) {
	return c.search(params, 0)
}

// GetVacancy returns the full vacancy. Search results carry no key skills, so
// this is what an import needs.
func (c *Client) GetVacancy(id string) (*Vacancy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("vacancy id is required")
	}

	var vacancy Vacancy
	if err := c.getJSON(c.APIURL+fmt.Sprintf(vacancyPath, id), nil, &vacancy); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}

	return &vacancy, nil
}

// Import searches vacancies and converts up to limit of them into job
// descriptions. A vacancy without key skills gets skills from the extractor
// run over its description. Zero limit imports every vacancy found.
func (c *Client) Import(params *SearchParams, limit int, extractor jd.SkillExtractor) ([]jd.JobDescription, error) {
	found, err := c.search(params, limit)
	if err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}
	c.logger.Debug("vacancies found", zap.Strings("ids", found.IDs()))

	jds := make([]jd.JobDescription, 0, found.Len())
	for _, item := range found.Items {
		vacancy, err := c.GetVacancy(item.ID)
		if err != nil {
			c.logger.Warn("using search snippet for vacancy", zap.String("vacancy_id", item.ID), zap.Error(err))
			vacancy = item
		}

		j := vacancy.ToJobDescription()
		if len(j.Skills) == 0 && extractor != nil {
			skills, err := extractor.ExtractSkills(c.ctx, vacancy.PlainText())
			if err != nil {
				return nil, fmt.Errorf("extract skills of vacancy %s: %w", vacancy.ID, err)
			}
			j.Skills = skills
			j = j.Normalize()
		}

		c.logger.Debug("vacancy imported", logger.JDFields(j.ID, j.Title)...)
		jds = append(jds, j)
	}

	return jds, nil
}
