package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const filesAPIPath = "/api/2.0/fs/files"

// VolumeClient writes files into a managed storage volume through the
// workspace Files API, authenticating with a static bearer token.
type VolumeClient struct {
	Host       string
	Token      string
	Overwrite  bool
	HTTPClient *http.Client
}

func NewVolumeClient(appConfig AppConfig) *VolumeClient {
	return &VolumeClient{
		Host:       appConfig.RemoteHost,
		Token:      appConfig.RemoteToken,
		Overwrite:  appConfig.RemoteOverwrite,
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (v *VolumeClient) fileURL(remotePath string) (string, error) {
	host := v.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid remote host %q: %w", v.Host, err)
	}

	base.Path = path.Join(base.Path, filesAPIPath, "/"+strings.TrimPrefix(remotePath, "/"))
	base.RawQuery = url.Values{"overwrite": []string{strconv.FormatBool(v.Overwrite)}}.Encode()

	return base.String(), nil
}

func (v *VolumeClient) UploadFile(remotePath string, body io.Reader) error {
	target, err := v.fileURL(remotePath)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if v.Token != "" {
		req.Header.Set("Authorization", "Bearer "+v.Token)
	}

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload to %s failed with status %d: %s",
			remotePath, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
