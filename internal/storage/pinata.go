package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docverify/internal/apperr"
	"docverify/internal/config"
)

const pinFilePath = "/pinning/pinFileToIPFS"

// pinataStorage pins files to IPFS through the Pinata API.
// It is safe for concurrent use by multiple goroutines.
type pinataStorage struct {
	client   *http.Client
	apiURL   string
	key      string
	secret   string
	gateway  string
	maxBytes int64
}

// NewPinata creates a storage client for the Pinata pinning service.
func NewPinata(cfg config.StorageConfig) (Storage, error) {
	if cfg.Pinata.APIKey == "" || cfg.Pinata.APISecret == "" {
		return nil, fmt.Errorf("pinata credentials are required")
	}
	if cfg.Pinata.APIURL == "" {
		return nil, fmt.Errorf("pinata api url is required")
	}
	return &pinataStorage{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		apiURL:   strings.TrimRight(cfg.Pinata.APIURL, "/"),
		key:      cfg.Pinata.APIKey,
		secret:   cfg.Pinata.APISecret,
		gateway:  cfg.GatewayURL,
		maxBytes: cfg.MaxUploadBytes,
	}, nil
}

type pinataMetadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *pinataStorage) Put(ctx context.Context, r io.Reader, opt PutOptions) (string, error) {
	data, err := readLimited(r, opt.Size, p.maxBytes)
	if err != nil {
		return "", err
	}

	body, contentType, err := buildPinForm(data, opt)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrStorageUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+pinFilePath, body)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrStorageUnavailable, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", p.key)
	req.Header.Set("pinata_secret_api_key", p.secret)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return "", err
	}

	var out pinataResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperr.Wrapf(apperr.ErrStorageUnavailable, "decode pin response: %v", err)
	}
	if out.IpfsHash == "" {
		return "", apperr.Wrapf(apperr.ErrStorageUnavailable, "pin response carried no content id")
	}
	if !ValidCID(out.IpfsHash) {
		return "", apperr.Wrapf(apperr.ErrStorageUnavailable, "pin response carried malformed content id %q", out.IpfsHash)
	}
	return out.IpfsHash, nil
}

func (p *pinataStorage) ResolveURL(contentID string) string {
	return gatewayURL(p.gateway, contentID)
}

func buildPinForm(data []byte, opt PutOptions) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := opt.FileName
	if name == "" {
		name = "document"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	ct := opt.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	meta, err := json.Marshal(pinataMetadata{Name: name, KeyValues: opt.Metadata})
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// classifyStatus maps a pinning response code onto the storage error kinds.
func classifyStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		code == http.StatusTooManyRequests || code == http.StatusRequestTimeout:
		return apperr.Wrapf(apperr.ErrStorageUnavailable, "pinning service returned %d: %s", code, snippet(body))
	case code >= 400 && code < 500:
		return apperr.Wrapf(apperr.ErrStorageRejected, "pinning service returned %d: %s", code, snippet(body))
	default:
		return apperr.Wrapf(apperr.ErrStorageUnavailable, "pinning service returned %d: %s", code, snippet(body))
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

var errTooLarge = errors.New("content exceeds upload limit")

// readLimited buffers r, rejecting content above max bytes (max <= 0 disables the check).
func readLimited(r io.Reader, size, max int64) ([]byte, error) {
	if r == nil {
		return nil, apperr.Wrapf(apperr.ErrStorageRejected, "no content")
	}
	if max > 0 && size > max {
		return nil, apperr.Wrapf(apperr.ErrStorageRejected, "%v: %d > %d bytes", errTooLarge, size, max)
	}
	src := r
	if max > 0 {
		src = io.LimitReader(r, max+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, err)
	}
	if max > 0 && int64(len(data)) > max {
		return nil, apperr.Wrapf(apperr.ErrStorageRejected, "%v: more than %d bytes", errTooLarge, max)
	}
	return data, nil
}
