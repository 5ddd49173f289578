package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/lacoski/backurne/pkg/snapshot"
)

// profilesAPIRequest is the descriptor POSTed to the profiles API for a
// single unit/disk pair, per spec.md §4.3 and §6's external contract.
type profilesAPIRequest struct {
	Cluster profilesAPICluster `json:"cluster"`
	VM      profilesAPIVM      `json:"vm"`
	Disk    profilesAPIDisk    `json:"disk"`
}

type profilesAPICluster struct {
	Type string `json:"type"`
	Name string `json:"name"`
	FQDN string `json:"fqdn"`
}

type profilesAPIVM struct {
	VMID string `json:"vmid"`
	Name string `json:"name"`
}

type profilesAPIDisk struct {
	RBD     string `json:"rbd"`
	Adapter string `json:"adapter,omitempty"`
}

// profilesAPIResponse is the decoded reply. Backup false means "skip this
// disk entirely"; Profiles, when present, overrides/extends the global
// table for this disk only.
type profilesAPIResponse struct {
	Backup   bool                     `json:"backup"`
	Profiles map[string]profileWire   `json:"profiles,omitempty"`
}

type profileWire struct {
	Count     int    `json:"count"`
	Frequency string `json:"frequency"`
	MaxOnLive int    `json:"max_on_live,omitempty"`
}

// ProfilesAPIClient POSTs a unit/disk descriptor to an operator-configured
// HTTP endpoint and merges the response into the global profile table.
// Rate limiting mirrors the teacher's inbound-request limiter
// (pkg/server/server.go's golang.org/x/time/rate usage) applied here to
// outbound calls instead, so a misbehaving profiles API cannot be hammered
// by a large fleet of units.
type ProfilesAPIClient struct {
	URL        string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// NewProfilesAPIClient builds a client capped at the given requests/second.
func NewProfilesAPIClient(url string, requestsPerSecond float64) *ProfilesAPIClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &ProfilesAPIClient{
		URL:        url,
		HTTPClient: http.DefaultClient,
		Limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Resolve fetches the per-disk override. ok mirrors Backup; an HTTP or
// transport error is never fatal — it is logged and the caller should fall
// back to the global table (spec.md §4.3).
func (c *ProfilesAPIClient) Resolve(ctx context.Context, clusterType, clusterName, fqdn string, unit Unit, disk Disk) (profiles map[string]profileWire, ok bool, err error) {
	if c == nil || c.URL == "" {
		return nil, true, nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, true, err
	}

	body, err := json.Marshal(profilesAPIRequest{
		Cluster: profilesAPICluster{Type: clusterType, Name: clusterName, FQDN: fqdn},
		VM:      profilesAPIVM{VMID: unit.ID, Name: unit.Name},
		Disk:    profilesAPIDisk{RBD: disk.RBD, Adapter: disk.Adapter},
	})
	if err != nil {
		return nil, true, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, true, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		slog.Warn("profiles API request failed, falling back to global table", "error", err, "unit", unit.ID, "disk", disk.RBD)
		return nil, true, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		slog.Warn("profiles API returned non-2xx, falling back to global table", "status", resp.StatusCode, "unit", unit.ID, "disk", disk.RBD)
		return nil, true, nil
	}

	var out profilesAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Warn("profiles API returned unparsable body, falling back to global table", "error", err)
		return nil, true, nil
	}
	return out.Profiles, out.Backup, nil
}

// resolveProfiles merges global into whatever the profiles API (if any)
// returns for this unit/disk, implementing spec.md §4.3's merge/skip rule.
func resolveProfiles(ctx context.Context, global snapshot.Table, api *ProfilesAPIClient, clusterType, clusterName, fqdn string, unit Unit, disk Disk) ([]ProfileEntry, bool, error) {
	override, ok, err := api.Resolve(ctx, clusterType, clusterName, fqdn, unit, disk)
	if err != nil {
		return nil, true, err
	}
	if !ok {
		return nil, false, nil
	}

	merged := make(snapshot.Table, len(global)+len(override))
	for name, p := range global {
		merged[name] = p
	}
	for name, w := range override {
		merged[name] = snapshot.ProfileConfig{
			Count:     w.Count,
			Frequency: snapshot.Frequency(w.Frequency),
			MaxOnLive: w.MaxOnLive,
		}
	}

	entries := make([]ProfileEntry, 0, len(merged))
	for name, p := range merged {
		entries = append(entries, ProfileEntry{Name: name, Profile: p})
	}
	return entries, true, nil
}
