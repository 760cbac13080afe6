package imghost

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/contactdesk/contactdesk/pkg/circuit"
	"go.uber.org/zap"
)

// Config holds image host (Cloudinary-compatible) credentials
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	Timeout   time.Duration
}

// Client uploads avatar images to the external image host. Outbound calls
// go through a circuit breaker so a host outage fails fast instead of
// stalling request handlers.
type Client struct {
	config  Config
	http    *http.Client
	breaker *circuit.Breaker
	logger  *zap.Logger
	baseURL string
}

// UploadResult is the subset of the upload API response we consume
type UploadResult struct {
	PublicID  string `json:"public_id"`
	Version   int64  `json:"version"`
	SecureURL string `json:"secure_url"`
}

// NewClient creates an image host client with a pooled transport
func NewClient(config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		config:  config,
		http:    &http.Client{Transport: transport, Timeout: config.Timeout},
		breaker: circuit.NewBreaker("imghost", circuit.DefaultConfig(), logger),
		logger:  logger,
		baseURL: "https://api.cloudinary.com/v1_1/" + config.CloudName,
	}
}

// Upload sends the image to the host under publicID, overwriting any
// previous upload with the same ID, and returns the upload result.
func (c *Client) Upload(ctx context.Context, publicID string, file io.Reader) (*UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{
		"public_id": publicID,
		"overwrite": "true",
		"timestamp": timestamp,
	}
	if c.config.Folder != "" {
		params["folder"] = c.config.Folder
	}

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write upload field: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.config.APIKey); err != nil {
		return nil, fmt.Errorf("failed to write upload field: %w", err)
	}
	if err := writer.WriteField("signature", c.sign(params)); err != nil {
		return nil, fmt.Errorf("failed to write upload field: %w", err)
	}

	part, err := writer.CreateFormFile("file", "avatar")
	if err != nil {
		return nil, fmt.Errorf("failed to create upload part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload body: %w", err)
	}

	var result UploadResult
	err = c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/upload", body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(data))
		}

		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		c.logger.Error("Image upload failed",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("Image uploaded",
		zap.String("public_id", result.PublicID),
		zap.Int64("version", result.Version),
	)

	return &result, nil
}

// UploadAvatar uploads the image and returns its fill-cropped delivery URL
func (c *Client) UploadAvatar(ctx context.Context, publicID string, file io.Reader) (string, error) {
	result, err := c.Upload(ctx, publicID, file)
	if err != nil {
		return "", err
	}
	return c.AvatarURL(result), nil
}

// AvatarURL builds the 250x250 fill-cropped delivery URL for an upload
func (c *Client) AvatarURL(result *UploadResult) string {
	return fmt.Sprintf(
		"https://res.cloudinary.com/%s/image/upload/w_250,h_250,c_fill/v%d/%s",
		c.config.CloudName, result.Version, result.PublicID,
	)
}

// sign computes the request signature over the sorted parameter set
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	h := sha1.Sum([]byte(strings.Join(pairs, "&") + c.config.APISecret))
	return hex.EncodeToString(h[:])
}
