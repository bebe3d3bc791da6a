package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rocketscienceinc/gomoku-arbiter/internal/apperror"
	"github.com/rocketscienceinc/gomoku-arbiter/internal/entity"
)

const (
	jsonpCallback = "go"
	maxReplySize  = 4 << 10
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Remote asks an external service for its move over HTTP.
type Remote struct {
	logger *slog.Logger
	client httpDoer

	color    entity.Color
	session  string
	endpoint string
	timeout  time.Duration
}

func NewRemote(logger *slog.Logger, client httpDoer, seat *entity.Seat, timeout time.Duration) *Remote {
	return &Remote{
		logger:   logger.With("component", "remote_agent", "color", seat.Color, "endpoint", seat.Endpoint),
		client:   client,
		color:    seat.Color,
		session:  seat.Session,
		endpoint: seat.Endpoint,
		timeout:  timeout,
	}
}

func (that *Remote) Color() entity.Color {
	return that.color
}

func (that *Remote) Session() string {
	return that.session
}

func (that *Remote) Move(ctx context.Context, adversary entity.Move) <-chan Reply {
	return resolve(func() (entity.Coordinate, error) {
		return that.request(ctx, adversary)
	})
}

// request - sends {move, session, color} and decodes the reply as the produced move.
func (that *Remote) request(ctx context.Context, adversary entity.Move) (entity.Coordinate, error) {
	log := that.logger.With("method", "request", "adversary", adversary.Encode())

	if that.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.timeout)
		defer cancel()
	}

	target, err := that.buildURL(adversary)
	if err != nil {
		return entity.Coordinate{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return entity.Coordinate{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := that.client.Do(req)
	if err != nil {
		return entity.Coordinate{}, fmt.Errorf("%w: %w", apperror.ErrAgentUnresponsive, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entity.Coordinate{}, fmt.Errorf("%w: status %d", apperror.ErrAgentUnresponsive, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return entity.Coordinate{}, fmt.Errorf("%w: failed to read reply: %w", apperror.ErrAgentUnresponsive, err)
	}

	move, err := DecodeReply(body)
	if err != nil {
		return entity.Coordinate{}, err
	}

	log.Debug("agent replied", "move", move.String())

	return move, nil
}

func (that *Remote) buildURL(adversary entity.Move) (string, error) {
	target, err := url.Parse(that.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", that.endpoint, err)
	}

	query := target.Query()
	query.Set("move", adversary.Encode())
	query.Set("session", that.session)
	query.Set("color", string(that.color))
	target.RawQuery = query.Encode()

	return target.String(), nil
}

// DecodeReply - accepts [x, y], {"x": .., "y": ..} or either of them wrapped in a go(...) JSONP callback.
func DecodeReply(body []byte) (entity.Coordinate, error) {
	payload := bytes.TrimSpace(body)
	payload = bytes.TrimSuffix(payload, []byte(";"))
	payload = bytes.TrimSpace(payload)

	if inner, ok := bytes.CutPrefix(payload, []byte(jsonpCallback+"(")); ok {
		inner, ok = bytes.CutSuffix(inner, []byte(")"))
		if !ok {
			return entity.Coordinate{}, fmt.Errorf("%w: unterminated callback", apperror.ErrMalformedMove)
		}
		payload = bytes.TrimSpace(inner)
	}

	if len(payload) == 0 {
		return entity.Coordinate{}, fmt.Errorf("%w: empty reply", apperror.ErrMalformedMove)
	}

	switch payload[0] {
	case '[':
		var pair []int
		if err := json.Unmarshal(payload, &pair); err != nil {
			return entity.Coordinate{}, fmt.Errorf("%w: %w", apperror.ErrMalformedMove, err)
		}
		if len(pair) != 2 {
			return entity.Coordinate{}, fmt.Errorf("%w: expected 2 values, got %d", apperror.ErrMalformedMove, len(pair))
		}
		return entity.Coordinate{X: pair[0], Y: pair[1]}, nil
	case '{':
		var obj struct {
			X *int `json:"x"`
			Y *int `json:"y"`
		}
		if err := json.Unmarshal(payload, &obj); err != nil {
			return entity.Coordinate{}, fmt.Errorf("%w: %w", apperror.ErrMalformedMove, err)
		}
		if obj.X == nil || obj.Y == nil {
			return entity.Coordinate{}, fmt.Errorf("%w: missing x or y", apperror.ErrMalformedMove)
		}
		return entity.Coordinate{X: *obj.X, Y: *obj.Y}, nil
	default:
		return entity.Coordinate{}, fmt.Errorf("%w: %q", apperror.ErrMalformedMove, payload)
	}
}
