package simulator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"TankWatch.api/internal/models"
)

// Client posts reading sets to the water quality API the way the field
// device does.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// Send posts one reading set to /data.
func (c *Client) Send(ctx context.Context, set models.TankSet) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(set).
		SetResult(&models.StatusResponse{}).
		Post("/data")
	if err != nil {
		return fmt.Errorf("posting reading set: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("server rejected reading set: %s: %s", resp.Status(), resp.String())
	}

	result, ok := resp.Result().(*models.StatusResponse)
	if !ok || result.Status != models.Success.Status {
		return fmt.Errorf("unexpected response: %s", resp.String())
	}
	return nil
}

// Simulator ties a Generator to a Client.
type Simulator struct {
	gen    *Generator
	client *Client
}

func New(p Profile, seed int64) *Simulator {
	return &Simulator{
		gen:    NewGenerator(p, seed),
		client: NewClient(p.Target, p.Timeout),
	}
}

// Tick generates and sends one reading set.
func (s *Simulator) Tick(ctx context.Context) error {
	set := s.gen.Next()
	if err := s.client.Send(ctx, set); err != nil {
		return err
	}
	log.Printf("Sent tank1=%+v tank2=%+v", set.Tank1, set.Tank2)
	return nil
}
