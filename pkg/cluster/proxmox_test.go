package cluster

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIdentityForUsesWellFormedSMBIOS(t *testing.T) {
	a := &ProxmoxAdapter{ClusterName: "c1"}
	want := uuid.New().String()

	id, ok := a.identityFor(pveVM{VMID: 101, SMBIOS: want})
	assert.True(t, ok)
	assert.Equal(t, want, id)
}

func TestIdentityForFallsBackWhenEnabled(t *testing.T) {
	a := &ProxmoxAdapter{ClusterName: "c1", UUIDFallback: true}

	id1, ok := a.identityFor(pveVM{VMID: 202})
	assert.True(t, ok)
	assert.NotEmpty(t, id1)

	id2, ok := a.identityFor(pveVM{VMID: 202})
	assert.True(t, ok)
	assert.Equal(t, id1, id2, "same cluster+VMID must synthesize the same identity every run")
}

func TestIdentityForFallbackDiffersAcrossClusters(t *testing.T) {
	a1 := &ProxmoxAdapter{ClusterName: "c1", UUIDFallback: true}
	a2 := &ProxmoxAdapter{ClusterName: "c2", UUIDFallback: true}

	id1, _ := a1.identityFor(pveVM{VMID: 303})
	id2, _ := a2.identityFor(pveVM{VMID: 303})
	assert.NotEqual(t, id1, id2)
}

func TestIdentityForSkipsWithoutFallback(t *testing.T) {
	a := &ProxmoxAdapter{ClusterName: "c1"}

	_, ok := a.identityFor(pveVM{VMID: 404})
	assert.False(t, ok)

	_, ok = a.identityFor(pveVM{VMID: 404, SMBIOS: "not-a-uuid"})
	assert.False(t, ok)
}
