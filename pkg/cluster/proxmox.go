package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/lacoski/backurne/pkg/errors"
	"github.com/lacoski/backurne/pkg/snapshot"
)

// fallbackNamespace scopes the deterministic UUIDs synthesized for VMs
// that carry no SMBIOS identity, so two VMs with the same VMID on
// different clusters never collide.
var fallbackNamespace = uuid.NameSpaceOID

// ProxmoxAdapter talks to a Proxmox VE cluster's REST API to enumerate VMs
// and bracket snapshot-taking with the QEMU guest agent's filesystem
// freeze/thaw calls.
type ProxmoxAdapter struct {
	BaseURL      string
	Pool         string
	ClusterName  string
	FQDN         string
	BackupPool   string
	APIToken     string
	UUIDFallback bool
	Profiles     snapshot.Table
	ProfilesAPI  *ProfilesAPIClient

	HTTPClient *http.Client
}

type pveVM struct {
	VMID   int    `json:"vmid"`
	Name   string `json:"name"`
	Node   string `json:"node"`
	SMBIOS string `json:"smbios1"`
}

type pveDisk struct {
	RBD     string `json:"volid"`
	Adapter string `json:"interface"`
}

func (a *ProxmoxAdapter) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

func (a *ProxmoxAdapter) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransientIO, "proxmox: build request", err)
	}
	req.Header.Set("Authorization", "PVEAPIToken="+a.APIToken)

	resp, err := a.client().Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransientIO, "proxmox: request "+path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.NewWithContext(errors.ErrCodeTransientIO, "proxmox: non-2xx response", map[string]any{"path": path, "status": resp.StatusCode})
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListUnits enumerates every VM in the cluster and its disks, skipping VMs
// without SMBIOS identity unless UUIDFallback is set (spec.md §4.3).
func (a *ProxmoxAdapter) ListUnits(ctx context.Context) ([]Unit, error) {
	var vmResp struct {
		Data []pveVM `json:"data"`
	}
	if err := a.get(ctx, "/api2/json/cluster/resources?type=vm", &vmResp); err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(vmResp.Data))
	for _, vm := range vmResp.Data {
		identity, ok := a.identityFor(vm)
		if !ok {
			continue
		}
		var diskResp struct {
			Data map[string]pveDisk `json:"data"`
		}
		path := fmt.Sprintf("/api2/json/nodes/%s/qemu/%d/config", vm.Node, vm.VMID)
		if err := a.get(ctx, path, &diskResp); err != nil {
			return nil, err
		}
		unit := Unit{
			ID:     fmt.Sprintf("%d", vm.VMID),
			Name:   vm.Name,
			Node:   vm.Node,
			SMBIOS: identity,
		}
		for _, d := range diskResp.Data {
			if d.RBD == "" {
				continue
			}
			local := fmt.Sprintf("vm-%d-%s", vm.VMID, d.Adapter)
			if a.ClusterName != "" {
				local = a.ClusterName + "_" + local
			}
			backupTarget := local
			if a.BackupPool != "" {
				backupTarget = a.BackupPool + "/" + local
			}
			unit.Disks = append(unit.Disks, Disk{
				RBD:          fmt.Sprintf("%s/vm-%d-%s", a.Pool, vm.VMID, d.Adapter),
				Adapter:      d.Adapter,
				BackupTarget: backupTarget,
			})
		}
		units = append(units, unit)
	}
	return units, nil
}

// identityFor resolves a VM's stable identity: its SMBIOS UUID when
// present and well-formed, or — when UUIDFallback is set — a UUID
// deterministically derived from the cluster name and VMID, so the same
// VM gets the same synthetic identity across repeated runs. ok is false
// when the VM has no usable identity and must be skipped (spec.md §4.3).
func (a *ProxmoxAdapter) identityFor(vm pveVM) (string, bool) {
	if vm.SMBIOS != "" {
		if id, err := uuid.Parse(vm.SMBIOS); err == nil {
			return id.String(), true
		}
	}
	if !a.UUIDFallback {
		return "", false
	}
	return uuid.NewSHA1(fallbackNamespace, []byte(fmt.Sprintf("%s/%d", a.ClusterName, vm.VMID))).String(), true
}

// ProfilesFor resolves the global table, optionally merged with a
// profiles-API response (spec.md §4.3).
func (a *ProxmoxAdapter) ProfilesFor(ctx context.Context, unit Unit, disk Disk) ([]ProfileEntry, bool, error) {
	return resolveProfiles(ctx, a.Profiles, a.ProfilesAPI, "proxmox", a.ClusterName, a.FQDN, unit, disk)
}

// Freeze calls the QEMU guest agent's fsfreeze-freeze for unit.
func (a *ProxmoxAdapter) Freeze(ctx context.Context, unit Unit) error {
	return a.agentExec(ctx, unit, "fsfreeze-freeze")
}

// Thaw calls the QEMU guest agent's fsfreeze-thaw for unit.
func (a *ProxmoxAdapter) Thaw(ctx context.Context, unit Unit) error {
	return a.agentExec(ctx, unit, "fsfreeze-thaw")
}

func (a *ProxmoxAdapter) agentExec(ctx context.Context, unit Unit, command string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api2/json/nodes/%s/qemu/%s/agent/%s", a.BaseURL, unit.Node, unit.ID, command), nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransientIO, "proxmox: build agent request", err)
	}
	req.Header.Set("Authorization", "PVEAPIToken="+a.APIToken)

	resp, err := a.client().Do(req)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeTransientIO, "proxmox: agent "+command, err, map[string]any{"unit": unit.ID})
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.NewWithContext(errors.ErrCodeTransientIO, "proxmox: agent call failed", map[string]any{"unit": unit.ID, "command": command, "status": resp.StatusCode})
	}
	return nil
}

var _ Adapter = (*ProxmoxAdapter)(nil)
