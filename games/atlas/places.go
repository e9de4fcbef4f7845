/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package atlas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PlaceService validates place names and suggests candidates. Calls may be
// slow or fail; callers bound them with a context deadline.
type PlaceService interface {
	StartsWith(ctx context.Context, letter byte) ([]string, error)
	Validate(ctx context.Context, name string) (bool, error)
}

// HTTPPlaces talks to a world-locations style API:
//
//	GET  {base}/starts-with/{letter} -> ["Aachen", "Aalborg", ...]
//	POST {base}/location/{name}      -> {"error": "..."} when unknown
type HTTPPlaces struct {
	base   string
	client *http.Client
}

func NewHTTPPlaces(base string, client *http.Client) *HTTPPlaces {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPPlaces{
		base:   strings.TrimSuffix(base, "/"),
		client: client,
	}
}

func (h *HTTPPlaces) StartsWith(ctx context.Context, letter byte) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base+"/starts-with/"+url.PathEscape(string(letter)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: starts-with %q: %w", letter, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil, fmt.Errorf("places: starts-with %q: unexpected status %s", letter, resp.Status)
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("places: starts-with %q: %w", letter, err)
	}

	return names, nil
}

type locationResponse struct {
	Error string `json:"error,omitempty"`
}

func (h *HTTPPlaces) Validate(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+"/location/"+url.PathEscape(name), nil)
	if err != nil {
		return false, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("places: location %q: %w", name, err)
	}
	defer resp.Body.Close()

	var body locationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return false, nil
		}

		return false, fmt.Errorf("places: location %q: %w", name, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return false, fmt.Errorf("places: location %q: unexpected status %s", name, resp.Status)
	}

	return body.Error == "", nil
}

// StaticPlaces serves a fixed list of names, for offline play and tests.
type StaticPlaces struct {
	names []string
	known map[string]struct{}
}

func NewStaticPlaces(names ...string) *StaticPlaces {
	s := &StaticPlaces{
		names: names,
		known: make(map[string]struct{}, len(names)),
	}

	for _, n := range names {
		s.known[strings.ToLower(n)] = struct{}{}
	}

	return s
}

func (s *StaticPlaces) StartsWith(ctx context.Context, letter byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	letter = lower(letter)

	out := []string{}
	for _, n := range s.names {
		if f, ok := firstLetter(n); ok && f == letter {
			out = append(out, n)
		}
	}

	return out, nil
}

func (s *StaticPlaces) Validate(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, ok := s.known[strings.ToLower(strings.TrimSpace(name))]

	return ok, nil
}

// DefaultPlaces is the built-in list used when the remote service is off.
func DefaultPlaces() *StaticPlaces {
	return NewStaticPlaces(
		"Amsterdam", "Athens", "Austria", "Argentina", "Algeria", "Accra", "Ankara",
		"Berlin", "Brazil", "Bangkok", "Belgium", "Bogota", "Budapest", "Nairobi",
		"Canada", "Cairo", "Chile", "China", "Copenhagen", "Cuba", "Dublin",
		"Denmark", "Dhaka", "Egypt", "Estonia", "Ecuador", "Edinburgh", "Finland",
		"France", "Fiji", "Germany", "Ghana", "Greece", "Geneva", "Helsinki",
		"Hungary", "Havana", "India", "Iceland", "Ireland", "Italy", "Indonesia",
		"Jakarta", "Japan", "Jordan", "Kenya", "Kyiv", "Kuwait", "Lisbon", "London",
		"Lima", "Latvia", "Madrid", "Mexico", "Moscow", "Malta", "Norway", "Nepal",
		"Nigeria", "Oslo", "Oman", "Ottawa", "Paris", "Peru", "Poland", "Portugal",
		"Qatar", "Quito", "Rome", "Russia", "Riga", "Spain", "Sweden", "Seoul",
		"Tokyo", "Turkey", "Tunisia", "Uganda", "Ukraine", "Uruguay", "Vienna",
		"Vietnam", "Venezuela", "Warsaw", "Wales", "Xiamen", "Yemen", "Yerevan",
		"Zambia", "Zimbabwe", "Zagreb", "Tallinn", "Lagos", "Sydney", "York",
		"Kabul", "Luxembourg", "Gabon", "Niger", "Rwanda", "Addis Ababa",
	)
}
