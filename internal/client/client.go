// Package client talks to a remote catalogue's sync API. Bodies are
// the same entity structs the local store persists; the same ID names
// the same entity on both sides.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/store"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the sync API at baseURL. The token is only
// required for writes.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, store.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

func (c *Client) Persons(ctx context.Context) ([]domain.Person, error) {
	var persons []domain.Person
	err := c.get(ctx, "/persons", &persons)
	return persons, err
}

func (c *Client) Person(ctx context.Context, id string) (*domain.Person, error) {
	var p domain.Person
	if err := c.get(ctx, "/persons/"+id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) PutPerson(ctx context.Context, p domain.Person) error {
	return c.post(ctx, "/persons", p)
}

func (c *Client) Instruments(ctx context.Context) ([]domain.Instrument, error) {
	var instruments []domain.Instrument
	err := c.get(ctx, "/instruments", &instruments)
	return instruments, err
}

func (c *Client) Instrument(ctx context.Context, id string) (*domain.Instrument, error) {
	var ins domain.Instrument
	if err := c.get(ctx, "/instruments/"+id, &ins); err != nil {
		return nil, err
	}
	return &ins, nil
}

func (c *Client) PutInstrument(ctx context.Context, ins domain.Instrument) error {
	return c.post(ctx, "/instruments", ins)
}

func (c *Client) Ensembles(ctx context.Context) ([]domain.Ensemble, error) {
	var ensembles []domain.Ensemble
	err := c.get(ctx, "/ensembles", &ensembles)
	return ensembles, err
}

func (c *Client) Ensemble(ctx context.Context, id string) (*domain.Ensemble, error) {
	var e domain.Ensemble
	if err := c.get(ctx, "/ensembles/"+id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) PutEnsemble(ctx context.Context, e domain.Ensemble) error {
	return c.post(ctx, "/ensembles", e)
}

func (c *Client) Work(ctx context.Context, id string) (*domain.WorkInsertion, error) {
	var ins domain.WorkInsertion
	if err := c.get(ctx, "/works/"+id, &ins); err != nil {
		return nil, err
	}
	return &ins, nil
}

func (c *Client) WorksByComposer(ctx context.Context, personID string) ([]domain.WorkInsertion, error) {
	var works []domain.WorkInsertion
	err := c.get(ctx, "/persons/"+personID+"/works", &works)
	return works, err
}

func (c *Client) PutWork(ctx context.Context, ins domain.WorkInsertion) error {
	return c.post(ctx, "/works", ins)
}

func (c *Client) Recording(ctx context.Context, id string) (*domain.RecordingInsertion, error) {
	var ins domain.RecordingInsertion
	if err := c.get(ctx, "/recordings/"+id, &ins); err != nil {
		return nil, err
	}
	return &ins, nil
}

func (c *Client) RecordingsByWork(ctx context.Context, workID string) ([]domain.RecordingInsertion, error) {
	var recordings []domain.RecordingInsertion
	err := c.get(ctx, "/works/"+workID+"/recordings", &recordings)
	return recordings, err
}

func (c *Client) PutRecording(ctx context.Context, ins domain.RecordingInsertion) error {
	return c.post(ctx, "/recordings", ins)
}
