package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"owlback/wisefido-triage/internal/domain"

	"github.com/go-resty/resty/v2"
)

// 响应 code：2000 成功
const codeSuccess = 2000

// envelope 服务端统一响应包装
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// APIError 服务端返回的失败响应
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("triage api: %d %s", e.StatusCode, e.Message)
	if e.Kind != "" {
		msg += " (" + e.Kind + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Patient 新增患者请求体；字段按原文传给服务端
type Patient struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Age      string `json:"age"`
	Severity string `json:"severity"`
}

// Client wisefido-triage HTTP API 客户端。
// 写操作不重试：外部程序的写入不是幂等的。
type Client struct {
	httpClient *resty.Client
}

// New 创建客户端
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{httpClient: c}
}

func (c *Client) ListPatients(ctx context.Context) ([]domain.PatientRecord, error) {
	var records []domain.PatientRecord
	if err := c.do(ctx, resty.MethodGet, "/triage/api/v1/patients", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) AddPatient(ctx context.Context, p Patient) error {
	return c.do(ctx, resty.MethodPost, "/triage/api/v1/patients", p, nil)
}

func (c *Client) UpdatePatient(ctx context.Context, id, severity string) error {
	body := map[string]string{"severity": severity}
	return c.do(ctx, resty.MethodPut, "/triage/api/v1/patients/"+url.PathEscape(id), body, nil)
}

func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.do(ctx, resty.MethodDelete, "/triage/api/v1/patients/"+url.PathEscape(id), nil, nil)
}

// RecentInvocations 最近的调用审计
func (c *Client) RecentInvocations(ctx context.Context, limit int) ([]domain.InvocationAudit, error) {
	var entries []domain.InvocationAudit
	path := fmt.Sprintf("/triage/api/v1/audit?limit=%d", limit)
	if err := c.do(ctx, resty.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("triage api %s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{StatusCode: resp.StatusCode(), Message: fmt.Sprintf("unexpected response: %s", resp.Status())}
	}
	if env.Code != codeSuccess {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
		var detail struct {
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		}
		if len(env.Result) > 0 && json.Unmarshal(env.Result, &detail) == nil {
			apiErr.Kind = detail.Kind
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}
