// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import "github.com/ManuGH/unictl/internal/domain"

// Command is the tagged union of administrative operations the runtime
// dispatches back to the controller. Concrete command types live below; the
// router decides per command which API surface carries it.
type Command interface {
	isCommand()
}

// Device lifecycle commands.

// AdoptDevice requests adoption of an unmanaged device.
type AdoptDevice struct {
	Mac domain.MacAddress
}

// RestartDevice reboots a device, addressed by id or MAC.
type RestartDevice struct {
	ID  domain.EntityID
	Mac domain.MacAddress
}

// LocateDevice toggles the locate LED.
type LocateDevice struct {
	ID  domain.EntityID
	Mac domain.MacAddress
	On  bool
}

// PowerCyclePort power-cycles a PoE port.
type PowerCyclePort struct {
	ID   domain.EntityID
	Mac  domain.MacAddress
	Port int
}

// RemoveDevice forgets a device.
type RemoveDevice struct {
	ID  domain.EntityID
	Mac domain.MacAddress
}

// UpgradeDevice starts a firmware upgrade. Session API only.
type UpgradeDevice struct {
	Mac domain.MacAddress
}

// ProvisionDevice forces a re-provision. Session API only.
type ProvisionDevice struct {
	Mac domain.MacAddress
}

// Client commands.

// BlockClient blocks a station.
type BlockClient struct {
	ID  domain.EntityID
	Mac domain.MacAddress
}

// UnblockClient unblocks a station.
type UnblockClient struct {
	ID  domain.EntityID
	Mac domain.MacAddress
}

// ReconnectClient kicks a station so it reassociates.
type ReconnectClient struct {
	ID  domain.EntityID
	Mac domain.MacAddress
}

// ForgetClient removes a station's history. Session API only.
type ForgetClient struct {
	Mac domain.MacAddress
}

// AuthorizeGuest authorizes a guest station. Session API only.
type AuthorizeGuest struct {
	Mac     domain.MacAddress
	Minutes int
}

// Configuration CRUD. Create and Update carry the wire fields as an opaque
// object; updates follow merge semantics against the current representation.

type CreateNetwork struct{ Fields map[string]any }

type UpdateNetwork struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteNetwork struct{ ID domain.EntityID }

type CreateWifiBroadcast struct{ Fields map[string]any }

type UpdateWifiBroadcast struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteWifiBroadcast struct{ ID domain.EntityID }

type CreateFirewallPolicy struct{ Fields map[string]any }

type UpdateFirewallPolicy struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteFirewallPolicy struct{ ID domain.EntityID }

type ReorderFirewallPolicies struct{ IDs []string }

type CreateFirewallZone struct{ Fields map[string]any }

type UpdateFirewallZone struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteFirewallZone struct{ ID domain.EntityID }

type CreateAclRule struct{ Fields map[string]any }

type UpdateAclRule struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteAclRule struct{ ID domain.EntityID }

type ReorderAclRules struct{ IDs []string }

type CreateDnsPolicy struct{ Fields map[string]any }

type UpdateDnsPolicy struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteDnsPolicy struct{ ID domain.EntityID }

type CreateTrafficMatchingList struct{ Fields map[string]any }

type UpdateTrafficMatchingList struct {
	ID     domain.EntityID
	Fields map[string]any
}

type DeleteTrafficMatchingList struct{ ID domain.EntityID }

type CreateVouchers struct{ Fields map[string]any }

type DeleteVoucher struct{ ID domain.EntityID }

// Controller-level commands. Session API only.

type Speedtest struct{}

type CreateBackup struct{ Days int }

type DeleteBackup struct{ Filename string }

type InviteAdmin struct {
	Name  string
	Email string
}

type RebootController struct{}

type PowerOffController struct{}

type AddSite struct{ Description string }

type DeleteSite struct{ SiteID string }

func (AdoptDevice) isCommand()               {}
func (RestartDevice) isCommand()             {}
func (LocateDevice) isCommand()              {}
func (PowerCyclePort) isCommand()            {}
func (RemoveDevice) isCommand()              {}
func (UpgradeDevice) isCommand()             {}
func (ProvisionDevice) isCommand()           {}
func (BlockClient) isCommand()               {}
func (UnblockClient) isCommand()             {}
func (ReconnectClient) isCommand()           {}
func (ForgetClient) isCommand()              {}
func (AuthorizeGuest) isCommand()            {}
func (CreateNetwork) isCommand()             {}
func (UpdateNetwork) isCommand()             {}
func (DeleteNetwork) isCommand()             {}
func (CreateWifiBroadcast) isCommand()       {}
func (UpdateWifiBroadcast) isCommand()       {}
func (DeleteWifiBroadcast) isCommand()       {}
func (CreateFirewallPolicy) isCommand()      {}
func (UpdateFirewallPolicy) isCommand()      {}
func (DeleteFirewallPolicy) isCommand()      {}
func (ReorderFirewallPolicies) isCommand()   {}
func (CreateFirewallZone) isCommand()        {}
func (UpdateFirewallZone) isCommand()        {}
func (DeleteFirewallZone) isCommand()        {}
func (CreateAclRule) isCommand()             {}
func (UpdateAclRule) isCommand()             {}
func (DeleteAclRule) isCommand()             {}
func (ReorderAclRules) isCommand()           {}
func (CreateDnsPolicy) isCommand()           {}
func (UpdateDnsPolicy) isCommand()           {}
func (DeleteDnsPolicy) isCommand()           {}
func (CreateTrafficMatchingList) isCommand() {}
func (UpdateTrafficMatchingList) isCommand() {}
func (DeleteTrafficMatchingList) isCommand() {}
func (CreateVouchers) isCommand()            {}
func (DeleteVoucher) isCommand()             {}
func (Speedtest) isCommand()                 {}
func (CreateBackup) isCommand()              {}
func (DeleteBackup) isCommand()              {}
func (InviteAdmin) isCommand()               {}
func (RebootController) isCommand()          {}
func (PowerOffController) isCommand()        {}
func (AddSite) isCommand()                   {}
func (DeleteSite) isCommand()                {}
