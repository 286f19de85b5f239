package fraud

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPGate screens against an external fraud service over HTTP.
type HTTPGate struct {
	Endpoint string
	Client   *http.Client
	Logger   *zap.Logger
	Timeout  time.Duration
}

// NewHTTPGate constructs a gate with a bounded per-call timeout.
func NewHTTPGate(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPGate {
	return &HTTPGate{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Logger:   logger,
		Timeout:  timeout,
	}
}

type screenResponse struct {
	Decision string `json:"decision"`
}

// Screen posts the request to the screening endpoint. Any transport failure,
// timeout, or unreadable response fails open to Approve with a warning.
func (g *HTTPGate) Screen(ctx context.Context, req ScreenRequest) Decision {
	payload, err := json.Marshal(req)
	if err != nil {
		g.Logger.Warn("fraud screen request marshal failed, failing open", zap.Error(err))
		return Approve
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(payload))
	if err != nil {
		g.Logger.Warn("fraud screen request build failed, failing open", zap.Error(err))
		return Approve
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		g.Logger.Warn("fraud service unreachable, failing open",
			zap.String("userId", req.UserID), zap.Error(err))
		return Approve
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.Logger.Warn("fraud service returned non-200, failing open",
			zap.Int("status", resp.StatusCode), zap.String("userId", req.UserID))
		return Approve
	}

	var out screenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		g.Logger.Warn("fraud response unreadable, failing open", zap.Error(err))
		return Approve
	}

	switch Decision(out.Decision) {
	case Deny:
		return Deny
	case Review:
		return Review
	case Approve:
		return Approve
	default:
		g.Logger.Warn("fraud service returned unknown decision, failing open",
			zap.String("decision", out.Decision))
		return Approve
	}
}
