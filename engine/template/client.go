package template

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	templatesPath   = "/component-templates"
	collectionsPath = "/component-collections"
)

// ClientConfig configures the HTTP template store.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	Debug      bool
}

// Client is the HTTP implementation of Store.
type Client struct {
	http *resty.Client
}

var _ Store = (*Client)(nil)

// NewClient builds a Client for cfg.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("template store base URL is required")
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetDebug(cfg.Debug)
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	client.AddRetryCondition(retryCondition)
	return &Client{http: client}, nil
}

// retryCondition retries network errors, server errors and throttling.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// SaveComponentTemplate creates the template when id is zero and updates it
// otherwise. An error payload in the response is a failure even on 2xx.
func (c *Client) SaveComponentTemplate(
	ctx context.Context,
	id core.ID,
	def *Definition,
	publish bool,
) (*SaveResult, error) {
	log := logger.FromContext(ctx)
	op := "create template"
	req := c.http.R().
		SetContext(ctx).
		SetBody(def).
		SetQueryParam("publish", strconv.FormatBool(publish))
	var (
		resp *resty.Response
		err  error
	)
	if id.IsZero() {
		resp, err = req.Post(templatesPath)
	} else {
		op = "update template"
		resp, err = req.Put(templatesPath + "/" + id.String())
	}
	if err != nil {
		return nil, &RemoteSaveFailure{Op: op, Cause: err}
	}
	body := resp.Body()
	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return nil, &RemoteSaveFailure{Op: op, Status: resp.StatusCode(), Message: errorMessage(msg)}
	}
	if resp.IsError() {
		return nil, &RemoteSaveFailure{Op: op, Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	savedID := gjson.GetBytes(body, "component.id").String()
	if savedID == "" {
		return nil, &RemoteSaveFailure{Op: op, Status: resp.StatusCode(), Message: "response is missing component.id"}
	}
	saved, err := withID(def, core.ID(savedID))
	if err != nil {
		return nil, err
	}
	component := gjson.GetBytes(body, "component")
	if name := component.Get("name"); name.Exists() {
		saved.Name = name.String()
	}
	if icon := component.Get("icon"); icon.Exists() {
		saved.Icon = icon.String()
	}
	if desc := component.Get("description"); desc.Exists() {
		saved.Description = desc.String()
	}
	log.Debug("Template saved", "template_id", savedID, "op", op, "publish", publish)
	return &SaveResult{ID: saved.ID, Definition: saved}, nil
}

func errorMessage(v gjson.Result) string {
	if v.IsObject() {
		if msg := v.Get("message"); msg.Exists() {
			return msg.String()
		}
		return v.Raw
	}
	return v.String()
}

// GetComponentsCollections fetches the collections lookup list.
func (c *Client) GetComponentsCollections(ctx context.Context) ([]Collection, error) {
	var collections []Collection
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&collections).
		Get(collectionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch component collections: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch component collections: status %d", resp.StatusCode())
	}
	return collections, nil
}
