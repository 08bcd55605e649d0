// Command smoke-api probes a running fleetwatch instance end to end:
// list scoped resources, generate a consolidated report, download it
// and release its handle. Meant for manual verification against a dev
// deployment, not as part of the test suite.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

type result struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "fleetwatch base URL")
	userID := flag.String("user", "usr-001", "value for the X-User-Id header")
	flag.Parse()

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-User-Id", *userID)

	steps := []struct {
		name string
		run  func(*resty.Client) error
	}{
		{"healthz", checkHealth},
		{"list sites", listPath("/api/v1/sites")},
		{"list devices", listPath("/api/v1/devices")},
		{"list tickets", listPath("/api/v1/tickets")},
		{"list alerts", listPath("/api/v1/alerts")},
		{"list notifications", listPath("/api/v1/notifications")},
		{"report lifecycle", reportLifecycle},
	}

	failed := 0
	for _, s := range steps {
		if err := s.run(client); err != nil {
			failed++
			fmt.Printf("FAIL %-20s %v\n", s.name, err)
			continue
		}
		fmt.Printf("ok   %s\n", s.name)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func checkHealth(c *resty.Client) error {
	resp, err := c.R().Get("/healthz")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return nil
}

func listPath(path string) func(*resty.Client) error {
	return func(c *resty.Client) error {
		var out result
		resp, err := c.R().SetResult(&out).Get(path)
		if err != nil {
			return err
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		if out.Code != 2000 {
			return fmt.Errorf("envelope code %d: %s", out.Code, out.Message)
		}
		return nil
	}
}

func reportLifecycle(c *resty.Client) error {
	// 生成
	var generated result
	resp, err := c.R().
		SetBody(map[string]any{
			"report_type": "consolidated",
			"date_preset": "all_data",
		}).
		SetResult(&generated).
		Post("/api/v1/reports/generate")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 || generated.Code != 2000 {
		return fmt.Errorf("generate failed: status %d, envelope %d %s",
			resp.StatusCode(), generated.Code, generated.Message)
	}

	var item struct {
		ReportID string `json:"report_id"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(generated.Result, &item); err != nil {
		return fmt.Errorf("decode generate result: %w", err)
	}
	if item.ReportID == "" {
		return fmt.Errorf("generate result missing report_id")
	}

	// 下载
	dl, err := c.R().Get("/api/v1/reports/history/" + item.ReportID + "/download")
	if err != nil {
		return err
	}
	if dl.StatusCode() != 200 {
		return fmt.Errorf("download failed: status %d", dl.StatusCode())
	}
	if len(dl.Body()) == 0 {
		return fmt.Errorf("download returned empty body for %s", item.Name)
	}

	// 释放句柄
	var released result
	rel, err := c.R().SetResult(&released).Delete("/api/v1/reports/history/" + item.ReportID + "/handle")
	if err != nil {
		return err
	}
	if rel.StatusCode() != 200 || released.Code != 2000 {
		return fmt.Errorf("handle release failed: status %d, envelope %d", rel.StatusCode(), released.Code)
	}
	return nil
}
