package link

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fastscape-lem/topoviz/internal/viz"
)

// Client mirrors an AppLinker's shared traits against a remote hub. Local
// trait changes are pushed, remote changes are decoded back into the local
// traits. Traits ignore writes of the value they already hold, so updates
// do not bounce between processes.
type Client struct {
	base string
	http *http.Client
	log  *logrus.Entry

	mu      sync.Mutex
	pending map[string]string
}

func NewClient(baseURL string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		base:    baseURL,
		http:    &http.Client{Timeout: watchTimeout + 5*time.Second},
		log:     log.WithField("component", "link-client"),
		pending: make(map[string]string),
	}
}

// Push sends trait values to the hub.
func (c *Client) Push(ctx context.Context, values map[string]string) error {
	body, err := json.Marshal(map[string]interface{}{"values": values})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/api/state/set", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "push state")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("hub returned status %d", resp.StatusCode)
	}
	return nil
}

// Fetch returns the hub's current state. A since value above 0 long-polls
// until the revision passes it.
func (c *Client) Fetch(ctx context.Context, since int64) (*State, error) {
	url := c.base + "/api/state/get"
	if since >= 0 {
		url = fmt.Sprintf("%s/api/state/watch?since=%d", c.base, since)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch state")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("hub returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Success bool  `json:"success"`
		Data    State `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "decode state")
	}
	if !envelope.Success {
		return nil, errors.New("hub reported failure")
	}
	return &envelope.Data, nil
}

// TraitSource exposes the traits a client mirrors against the hub. Both a
// single viewer app and an app linker group satisfy it.
type TraitSource interface {
	SharedTraits() map[string]viz.NamedTrait
}

// Mirror attaches observers to the source's shared traits, pushes their
// initial values, then applies hub updates until the context is done.
func (c *Client) Mirror(ctx context.Context, src TraitSource) error {
	shared := src.SharedTraits()
	if len(shared) == 0 {
		return errors.New("no shared traits to mirror")
	}

	initial := make(map[string]string, len(shared))
	for key, nt := range shared {
		key, nt := key, nt
		initial[key] = nt.Trait.Encode()
		nt.Trait.ObserveAny(func() {
			c.mu.Lock()
			c.pending[key] = nt.Trait.Encode()
			c.mu.Unlock()
		})
	}
	if err := c.Push(ctx, initial); err != nil {
		return err
	}

	state, err := c.Fetch(ctx, -1)
	if err != nil {
		return err
	}
	c.applyState(shared, state)

	flush := time.NewTicker(100 * time.Millisecond)
	defer flush.Stop()

	updates := make(chan *State)
	watchErr := make(chan error, 1)
	go func() {
		since := state.Revision
		for {
			st, err := c.Fetch(ctx, since)
			if err != nil {
				watchErr <- err
				return
			}
			since = st.Revision
			select {
			case updates <- st:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watchErr:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		case st := <-updates:
			c.applyState(shared, st)
		case <-flush.C:
			if err := c.flushPending(ctx); err != nil {
				c.log.WithError(err).Warn("push pending trait values")
			}
		}
	}
}

func (c *Client) flushPending(ctx context.Context) error {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.pending
	c.pending = make(map[string]string)
	c.mu.Unlock()
	return c.Push(ctx, batch)
}

func (c *Client) applyState(shared map[string]viz.NamedTrait, st *State) {
	for key, value := range st.Values {
		nt, ok := shared[key]
		if !ok {
			continue
		}
		if nt.Trait.Encode() == value {
			continue
		}
		if err := nt.Trait.Decode(value); err != nil {
			c.log.WithError(err).WithField("trait", key).Warn("apply hub value")
		}
	}
}
