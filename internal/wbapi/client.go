package wbapi

import (
	"net/http"
	"time"

	"github.com/sellerstats/wbsync/pkg/config"
	"github.com/sellerstats/wbsync/pkg/httputil"
	"github.com/sellerstats/wbsync/pkg/logger"
	"github.com/sellerstats/wbsync/pkg/redis"
)

// Client handles communication with the Wildberries seller API.
// All WB API calls go through this client.
//
// The advert, analytics and content APIs live on different hosts and carry
// different quotas, so each endpoint gets its own rate-limited HTTP client.
type Client struct {
	fullstatsHTTP *httputil.Client
	promotionHTTP *httputil.Client
	reportHTTP    *httputil.Client
	contentHTTP   *httputil.Client

	logger           *logger.Logger
	token            string
	advertBaseURL    string
	analyticsBaseURL string
	contentBaseURL   string
}

// NewClient creates a new WB API client. limiter may be backed by a disabled
// Redis client, in which case each endpoint falls back to a local token
// bucket enforcing the same quota within this process.
func NewClient(cfg *config.Config, log *logger.Logger, limiter *redis.RateLimiter) *Client {
	return &Client{
		fullstatsHTTP: httputil.NewWithTimeout(log, 90*time.Second).
			WithRetry(2, 65*time.Second).
			WithRateLimiter(limiter, redis.FullstatsRateLimit),
		promotionHTTP: httputil.NewWithTimeout(log, 30*time.Second).
			WithRetry(2, 2*time.Second).
			WithRateLimiter(limiter, redis.PromotionRateLimit),
		reportHTTP: httputil.NewWithTimeout(log, 60*time.Second).
			WithRetry(3, 2*time.Second).
			WithRateLimiter(limiter, redis.NMReportRateLimit),
		contentHTTP: httputil.NewWithTimeout(log, 60*time.Second).
			WithRetry(3, 2*time.Second).
			WithRateLimiter(limiter, redis.ContentCardsRateLimit),

		logger:           log,
		token:            cfg.WB.Token,
		advertBaseURL:    cfg.WB.AdvertBaseURL,
		analyticsBaseURL: cfg.WB.AnalyticsBaseURL,
		contentBaseURL:   cfg.WB.ContentBaseURL,
	}
}

// authHeaders returns the headers required by every WB API call.
func (c *Client) authHeaders() http.Header {
	h := http.Header{}
	h.Set("Authorization", c.token)
	return h
}
