package supplier

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config is the immutable supplier gateway configuration, constructed once
// at process start and shared by reference.
type Config struct {
	Endpoint    string
	Username    string
	Password    string // plaintext in config; only its MD5 hex crosses the wire
	CompanyCode string
	Timeout     time.Duration
	MaxRetries  int
	RatePerSec  int
	Compress    bool
}

// Client sends one signed XML command envelope per call. It is stateless
// across calls and safe for concurrent use.
type Client struct {
	hc       *http.Client
	cfg      Config
	limiter  *rate.Limiter
	passHash string
	logger   *zap.Logger
}

// errGatewayRejected marks a 4xx from the gateway itself. Repeating the same
// envelope cannot change the outcome, so the send loop fails fast on it.
var errGatewayRejected = errors.New("gateway rejected request")

// Result is the parsed outcome of one successful supplier call.
type Result struct {
	Root          *Node // the <result> element
	TransactionID string
	ElapsedMS     int
	Timestamp     string
	RequestBody   []byte
	ResponseBody  []byte
}

// NewClient builds a supplier client from immutable configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 10
	}
	sum := md5.Sum([]byte(cfg.Password))
	return &Client{
		hc:       &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(perSec), perSec),
		passHash: hex.EncodeToString(sum[:]),
		logger:   logger,
	}
}

// buildEnvelope wraps the command payload in the signed customer envelope.
// Element order is fixed by the supplier schema.
func (c *Client) buildEnvelope(command string, payload []*Node) *Node {
	envelope := NewNode("customer").
		Add("username", c.cfg.Username).
		Add("password", c.passHash).
		Add("id", c.cfg.CompanyCode).
		Add("source", "1").
		Add("product", "hotel")
	request := NewNode("request").SetAttr("command", command)
	for _, p := range payload {
		request.AddChild(p)
	}
	return envelope.AddChild(request)
}

// Send executes one supplier command. Transport-level failures (connection
// errors, timeouts, 5xx) are retried with the same envelope up to the
// configured bound. Business-level failures (successful=FALSE) are never
// retried here; they return a *ProtocolError and the retry decision belongs
// to the caller, which knows whether the specific code is safe to repeat.
func (c *Client) Send(ctx context.Context, command string, payload []*Node) (*Result, error) {
	envelope := c.buildEnvelope(command, payload)
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(envelope); err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", command, err)
	}
	requestBody := buf.Bytes()

	var (
		responseBody []byte
		lastErr      error
	)
	attempts := c.cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * 250 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			c.logger.Warn("retrying supplier call",
				zap.String("command", command),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		responseBody, lastErr = c.post(ctx, requestBody)
		if lastErr == nil || errors.Is(lastErr, errGatewayRejected) {
			break
		}
	}
	if lastErr != nil {
		if errors.Is(lastErr, errGatewayRejected) {
			return nil, fmt.Errorf("supplier %s: %w", command, lastErr)
		}
		return nil, fmt.Errorf("supplier %s transport failed after %d attempts: %w", command, attempts, lastErr)
	}

	return c.parse(command, requestBody, responseBody)
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	payload := body
	if c.cfg.Compress {
		var zbuf bytes.Buffer
		zw := gzip.NewWriter(&zbuf)
		if _, err := zw.Write(body); err != nil {
			return nil, fmt.Errorf("failed to compress request: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to compress request: %w", err)
		}
		payload = zbuf.Bytes()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	// Always ask for a compressed response and decompress it ourselves.
	req.Header.Set("Accept-Encoding", "gzip")
	if c.cfg.Compress {
		req.Header.Set("Content-Encoding", "gzip")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return nil, fmt.Errorf("supplier returned status %d", res.StatusCode)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%w with status %d", errGatewayRejected, res.StatusCode)
	}

	reader := io.Reader(res.Body)
	if strings.Contains(res.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed response: %w", err)
		}
		defer zr.Close()
		reader = zr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

func (c *Client) parse(command string, requestBody, responseBody []byte) (*Result, error) {
	root, err := ParseTree(responseBody)
	if err != nil {
		return nil, fmt.Errorf("supplier %s returned unparsable response: %w", command, err)
	}

	result := &Result{
		Root:          root,
		TransactionID: root.Attr("tID"),
		ElapsedMS:     atoiSafe(root.Attr("elapsedTime")),
		Timestamp:     root.Attr("date"),
		RequestBody:   requestBody,
		ResponseBody:  responseBody,
	}

	successful := strings.EqualFold(root.Value("successful"), "TRUE")
	if successful {
		return result, nil
	}

	perr := &ProtocolError{
		Command:       command,
		TransactionID: result.TransactionID,
		ElapsedMS:     result.ElapsedMS,
		Timestamp:     result.Timestamp,
		RequestBody:   Redact(string(requestBody)),
		ResponseBody:  Redact(string(responseBody)),
	}
	if errNode := root.First("error"); errNode != nil {
		perr.Code = errNode.IntValue("code")
		perr.Short = errNode.Value("shortDetails")
		perr.Details = errNode.Value("details")
	}
	if perr.Short == "" {
		perr.Short = Classify(perr.Code).UserMessage
	}
	return result, perr
}

func atoiSafe(s string) int {
	var n int
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
