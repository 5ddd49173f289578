// Package cluster implements the cluster adapter capability interface
// (spec.md §4.3): enumerating backup units on a live cluster, resolving the
// effective retention profiles for a unit's disk, and bracketing
// snapshot-taking in a freeze/thaw window.
//
// Two adapters are provided: ProxmoxAdapter for virtualization hosts backed
// by the Proxmox VE API, and PlainAdapter for a bare image pool with no VM
// inventory. Both satisfy Adapter, selected at config load time by
// config.ClusterConfig.Type.
package cluster
