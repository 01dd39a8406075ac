package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/classgrid/classgrid/pkg/models"
)

// Sentinel errors for optimizer client failures.
var (
	ErrOptimizerUnreachable = errors.New("optimizer unreachable")
	ErrOptimizerRejected    = errors.New("optimizer rejected request")
	ErrOptimizerTimeout     = errors.New("optimizer request timeout")
)

// Client is the interface for invoking the external schedule optimizer.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	Ready(ctx context.Context) error
}

// GenerateRequest is the payload sent to the optimizer's generation endpoint.
// JobID and CallbackURL let the optimizer report progress back by PATCHing
// the jobs endpoint while it runs.
type GenerateRequest struct {
	JobID       string                 `json:"job_id"`
	CallbackURL string                 `json:"callback_url"`
	Sections    []Section              `json:"sections"`
	Rooms       []Room                 `json:"rooms"`
	Teachers    []models.TeacherInput  `json:"teachers,omitempty"`
	Config      models.OptimizerConfig `json:"config"`
}

// Section is the optimizer's view of one class-section.
type Section struct {
	SectionID        string `json:"section_id"`
	CourseCode       string `json:"course_code"`
	Section          string `json:"section"`
	CourseTitle      string `json:"course_title"`
	TeacherName      string `json:"teacher_name"`
	RequiredRoomType string `json:"required_room_type"`
	WeeklyMinutes    int    `json:"weekly_minutes"`
	Enrollment       int    `json:"enrollment"`
}

// Room is the optimizer's view of one room.
type Room struct {
	RoomID     string `json:"room_id"`
	Code       string `json:"code"`
	Campus     string `json:"campus"`
	Capacity   int    `json:"capacity"`
	RoomType   string `json:"room_type"`
	Floor      string `json:"floor"`
	Accessible bool   `json:"accessible"`
}

// Assignment is one placement in the optimizer's result.
type Assignment struct {
	SectionID string `json:"section_id"`
	RoomID    string `json:"room_id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// GenerateResponse is the optimizer's result for a finished run.
type GenerateResponse struct {
	Success          bool         `json:"success"`
	Assignments      []Assignment `json:"assignments"`
	ScheduledCount   int          `json:"scheduled_count"`
	UnscheduledCount int          `json:"unscheduled_count"`
	Message          string       `json:"message,omitempty"`
}

// HTTPClient implements Client against the optimizer's HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new optimizer HTTP client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding generate request: %w", err)
	}

	u := fmt.Sprintf("%s/api/generate-schedule", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrOptimizerRejected, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding optimizer response: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Ready(ctx context.Context) error {
	u := fmt.Sprintf("%s/health", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOptimizerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: optimizer not ready (status %d)", ErrOptimizerUnreachable, resp.StatusCode)
	}
	return nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrOptimizerTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrOptimizerTimeout, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrOptimizerUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
