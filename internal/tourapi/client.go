package tourapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jihaego327-source/oz1210/internal/telemetry"
)

const (
	defaultBaseURL = "https://apis.data.go.kr/B551011/KorService1"

	opAreaCode      = "areaCode1"
	opAreaBasedList = "areaBasedList1"
	opSearchKeyword = "searchKeyword1"
	opDetailCommon  = "detailCommon1"
	opDetailIntro   = "detailIntro1"
	opDetailImage   = "detailImage1"
	opDetailPetTour = "detailPetTour1"

	httpTimeout = 10 * time.Second

	maxAttempts = 3
	backoffBase = 1000 * time.Millisecond
	backoffCap  = 4000 * time.Millisecond
)

// Client calls the TourAPI KorService endpoints. Every operation shares
// the same envelope handling, retry policy, and error taxonomy.
type Client struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	log        *slog.Logger

	attempts int
	base     time.Duration
	cap      time.Duration
}

// NewClient constructs a Client against the production base URL.
func NewClient(serviceKey string, log *slog.Logger) *Client {
	return NewClientWithURL(defaultBaseURL, serviceKey, log)
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, serviceKey string, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: httpTimeout},
		log:        log,
		attempts:   maxAttempts,
		base:       backoffBase,
		cap:        backoffCap,
	}
}

// ListQuery captures the shared listing parameters.
type ListQuery struct {
	Area        string
	ContentType string
	Rows        int
	Page        int
	Sort        string // "title" or "modified"
}

// arrangeFor maps a sort key to the upstream arrange code.
func arrangeFor(sort string) string {
	switch sort {
	case "title":
		return "O"
	case "modified":
		return "Q"
	default:
		return "Q"
	}
}

// ListRegions fetches area codes. With parent set it returns that
// area's districts; otherwise the top-level regions.
func (c *Client) ListRegions(ctx context.Context, parent string) ([]Region, error) {
	params := url.Values{}
	params.Set("numOfRows", "100")
	params.Set("pageNo", "1")
	if parent != "" {
		params.Set("areaCode", parent)
	}
	page, err := fetchList[Region](ctx, c, opAreaCode, params, 100, 1)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListByRegion fetches one page of attractions for an area.
func (c *Client) ListByRegion(ctx context.Context, q ListQuery) (*Page[Attraction], error) {
	params := url.Values{}
	params.Set("numOfRows", strconv.Itoa(q.Rows))
	params.Set("pageNo", strconv.Itoa(q.Page))
	params.Set("arrange", arrangeFor(q.Sort))
	if q.Area != "" {
		params.Set("areaCode", q.Area)
	}
	if q.ContentType != "" {
		params.Set("contentTypeId", q.ContentType)
	}
	return fetchList[Attraction](ctx, c, opAreaBasedList, params, q.Rows, q.Page)
}

// SearchKeyword fetches one page of attractions matching a free-text keyword.
func (c *Client) SearchKeyword(ctx context.Context, keyword string, q ListQuery) (*Page[Attraction], error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("numOfRows", strconv.Itoa(q.Rows))
	params.Set("pageNo", strconv.Itoa(q.Page))
	params.Set("arrange", arrangeFor(q.Sort))
	if q.Area != "" {
		params.Set("areaCode", q.Area)
	}
	if q.ContentType != "" {
		params.Set("contentTypeId", q.ContentType)
	}
	return fetchList[Attraction](ctx, c, opSearchKeyword, params, q.Rows, q.Page)
}

// GetDetail fetches the common detail record. Returns nil, nil when the
// upstream has no record for the ID.
func (c *Client) GetDetail(ctx context.Context, contentID string) (*Detail, error) {
	params := url.Values{}
	params.Set("contentId", contentID)
	params.Set("defaultYN", "Y")
	params.Set("firstImageYN", "Y")
	params.Set("addrinfoYN", "Y")
	params.Set("mapinfoYN", "Y")
	params.Set("overviewYN", "Y")
	page, err := fetchList[Detail](ctx, c, opDetailCommon, params, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return &page.Items[0], nil
}

// GetIntro fetches the operating-info record for an attraction. The
// field set varies per content type, so it stays a raw map. Returns
// nil, nil when absent.
func (c *Client) GetIntro(ctx context.Context, contentID, contentTypeID string) (Intro, error) {
	params := url.Values{}
	params.Set("contentId", contentID)
	params.Set("contentTypeId", contentTypeID)
	page, err := fetchList[Intro](ctx, c, opDetailIntro, params, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return page.Items[0], nil
}

// GetImages fetches one page of an attraction's image gallery.
func (c *Client) GetImages(ctx context.Context, contentID string, rows, page int) (*Page[ImageInfo], error) {
	params := url.Values{}
	params.Set("contentId", contentID)
	params.Set("imageYN", "Y")
	params.Set("numOfRows", strconv.Itoa(rows))
	params.Set("pageNo", strconv.Itoa(page))
	return fetchList[ImageInfo](ctx, c, opDetailImage, params, rows, page)
}

// GetPetInfo fetches the pet-accommodation record. Returns nil, nil
// when the upstream has no record — absence of data is a valid business
// outcome here, not a failure.
func (c *Client) GetPetInfo(ctx context.Context, contentID string) (*PetInfo, error) {
	params := url.Values{}
	params.Set("contentId", contentID)
	page, err := fetchList[PetInfo](ctx, c, opDetailPetTour, params, 10, 1)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return &page.Items[0], nil
}

// fetchList performs the request with retry, parses the envelope, and
// computes pagination locally. rows and page are the requested values,
// used as fallbacks when the upstream omits its own counts.
func fetchList[T any](ctx context.Context, c *Client, op string, params url.Values, rows, page int) (*Page[T], error) {
	body, err := c.get(ctx, op, params)
	if err != nil {
		return nil, err
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		telemetry.UpstreamRequests.WithLabelValues(op, "parse_error").Inc()
		return nil, parseErr(op, err)
	}

	hdr := env.Response.Header
	if hdr.ResultCode != resultCodeOK {
		telemetry.UpstreamRequests.WithLabelValues(op, "result_error").Inc()
		return nil, upstreamErr(op, 0, hdr.ResultCode, fmt.Errorf("resultMsg: %s", hdr.ResultMsg))
	}
	telemetry.UpstreamRequests.WithLabelValues(op, "ok").Inc()

	b := env.Response.Body
	items := b.Items.Items

	numOfRows := b.NumOfRows
	if numOfRows <= 0 {
		numOfRows = rows
	}
	pageNo := b.PageNo
	if pageNo <= 0 {
		pageNo = page
	}
	totalCount := b.TotalCount
	if totalCount < len(items) {
		totalCount = len(items)
	}

	return &Page[T]{Items: items, Pagination: NewPagination(pageNo, numOfRows, totalCount)}, nil
}

// get performs a GET with the shared query parameters and the retry
// policy: up to 3 attempts with exponential backoff (1s doubling,
// capped at 4s), retrying only network failures and 5xx statuses.
func (c *Client) get(ctx context.Context, op string, params url.Values) ([]byte, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("serviceKey", c.serviceKey)
	q.Set("MobileOS", "ETC")
	q.Set("MobileApp", "oz1210")
	q.Set("_type", "json")

	endpoint := c.baseURL + "/" + op + "?" + q.Encode()

	var lastErr *Error
	delay := c.base
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			telemetry.UpstreamRetries.Inc()
			select {
			case <-ctx.Done():
				return nil, networkErr(op, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.cap {
				delay = c.cap
			}
		}

		body, err := c.doOnce(ctx, op, endpoint)
		if err == nil {
			return body, nil
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = &Error{Category: CategoryUnknown, Op: op, cause: err}
		}
		telemetry.UpstreamRequests.WithLabelValues(op, string(apiErr.Category)).Inc()
		if !apiErr.Retryable() {
			return nil, apiErr
		}
		lastErr = apiErr
		c.log.Warn("tourapi call failed", "op", op, "attempt", attempt, "err", err)
	}

	return nil, lastErr
}

// doOnce performs a single HTTP round trip and classifies failures.
func (c *Client) doOnce(ctx context.Context, op, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, networkErr(op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, networkErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, upstreamErr(op, resp.StatusCode, "", nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkErr(op, err)
	}
	return body, nil
}
