// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/unictl/internal/convert"
	"github.com/ManuGH/unictl/internal/domain"
	"github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/metrics"
	"github.com/ManuGH/unictl/internal/unifi"
	"github.com/ManuGH/unictl/internal/unifi/legacy"
	"github.com/ManuGH/unictl/internal/unifi/rest"
)

// route dispatches one command to the API surface that carries it: the
// integration API when it models the operation and a UUID target is known,
// the session API otherwise.
func (c *Controller) route(ctx context.Context, cmd Command) (out any, err error) {
	restc, legacyc, siteID := c.clients()
	name := commandName(cmd)
	surface := "rest"
	if restc == nil || siteID == "" {
		surface = "legacy"
	}

	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.ObserveCommand(name, surface, result)
		c.logger.Debug().
			Str(log.FieldCommand, name).
			Str("surface", surface).
			Str("result", result).
			Msg("command executed")
	}()

	switch v := cmd.(type) {
	case AdoptDevice:
		if restc != nil && siteID != "" {
			return nil, restc.AdoptDevice(ctx, siteID, string(v.Mac))
		}
		surface = "legacy"
		return nil, c.devMgr(ctx, legacyc, map[string]any{"cmd": "adopt", "mac": string(v.Mac)})

	case RestartDevice:
		target, terr := c.deviceTarget(v.ID, v.Mac)
		if terr != nil {
			return nil, terr
		}
		if restc != nil && siteID != "" && target.uuid != "" {
			return nil, restc.DeviceActionRequest(ctx, siteID, target.uuid, rest.ActionRestart)
		}
		surface = "legacy"
		return nil, c.devMgr(ctx, legacyc, map[string]any{"cmd": "restart", "mac": string(target.mac)})

	case LocateDevice:
		target, terr := c.deviceTarget(v.ID, v.Mac)
		if terr != nil {
			return nil, terr
		}
		if restc != nil && siteID != "" && target.uuid != "" {
			action := rest.ActionLocateOn
			if !v.On {
				action = rest.ActionLocateOff
			}
			return nil, restc.DeviceActionRequest(ctx, siteID, target.uuid, action)
		}
		surface = "legacy"
		lcmd := "set-locate"
		if !v.On {
			lcmd = "unset-locate"
		}
		return nil, c.devMgr(ctx, legacyc, map[string]any{"cmd": lcmd, "mac": string(target.mac)})

	case PowerCyclePort:
		target, terr := c.deviceTarget(v.ID, v.Mac)
		if terr != nil {
			return nil, terr
		}
		if restc != nil && siteID != "" && target.uuid != "" {
			return nil, restc.PortActionRequest(ctx, siteID, target.uuid, v.Port, rest.ActionPowerCycle)
		}
		surface = "legacy"
		return nil, c.devMgr(ctx, legacyc, map[string]any{
			"cmd":      "power-cycle",
			"mac":      string(target.mac),
			"port_idx": v.Port,
		})

	case RemoveDevice:
		target, terr := c.deviceTarget(v.ID, v.Mac)
		if terr != nil {
			return nil, terr
		}
		if restc != nil && siteID != "" && target.uuid != "" {
			if derr := restc.DeleteDevice(ctx, siteID, target.uuid); derr != nil {
				return nil, derr
			}
			c.store.Devices.Remove(target.mac)
			return nil, nil
		}
		surface = "legacy"
		if derr := c.devMgr(ctx, legacyc, map[string]any{"cmd": "delete-device", "mac": string(target.mac)}); derr != nil {
			return nil, derr
		}
		c.store.Devices.Remove(target.mac)
		return nil, nil

	case UpgradeDevice:
		surface = "legacy"
		return nil, c.devMgr(ctx, legacyc, map[string]any{"cmd": "upgrade", "mac": string(v.Mac)})

	case ProvisionDevice:
		surface = "legacy"
		return nil, c.devMgr(ctx, legacyc, map[string]any{"cmd": "force-provision", "mac": string(v.Mac)})

	case BlockClient:
		return c.clientAction(ctx, restc, legacyc, siteID, &surface, v.ID, v.Mac, rest.ActionBlock, "block-sta")
	case UnblockClient:
		return c.clientAction(ctx, restc, legacyc, siteID, &surface, v.ID, v.Mac, rest.ActionUnblock, "unblock-sta")
	case ReconnectClient:
		return c.clientAction(ctx, restc, legacyc, siteID, &surface, v.ID, v.Mac, rest.ActionReconnect, "kick-sta")

	case ForgetClient:
		surface = "legacy"
		if lerr := c.staMgr(ctx, legacyc, map[string]any{"cmd": "forget-sta", "macs": []string{string(v.Mac)}}); lerr != nil {
			return nil, lerr
		}
		c.store.Clients.Remove(v.Mac)
		return nil, nil

	case AuthorizeGuest:
		surface = "legacy"
		payload := map[string]any{"cmd": "authorize-guest", "mac": string(v.Mac)}
		if v.Minutes > 0 {
			payload["minutes"] = v.Minutes
		}
		return nil, c.staMgr(ctx, legacyc, payload)

	case CreateNetwork:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateNetwork, convert.Network, c.store.Networks.Upsert)
	case UpdateNetwork:
		return restUpdate(ctx, c, restc, siteID, v.ID, v.Fields, restc.GetNetwork, restc.UpdateNetwork, convert.Network, c.store.Networks.Upsert)
	case DeleteNetwork:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteNetwork, c.store.Networks.Remove)

	case CreateWifiBroadcast:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateWifiBroadcast, convert.WifiBroadcast, c.store.WifiBroadcasts.Upsert)
	case UpdateWifiBroadcast:
		return restUpdate(ctx, c, restc, siteID, v.ID, v.Fields, restc.GetWifiBroadcast, restc.UpdateWifiBroadcast, convert.WifiBroadcast, c.store.WifiBroadcasts.Upsert)
	case DeleteWifiBroadcast:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteWifiBroadcast, c.store.WifiBroadcasts.Remove)

	case CreateFirewallPolicy:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateFirewallPolicy, convert.FirewallPolicy, c.store.FirewallPolicies.Upsert)
	case UpdateFirewallPolicy:
		// The policy endpoint supports PATCH, so merge semantics come for
		// free without a read back.
		if restc == nil || siteID == "" {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "the integration API"}
		}
		updated, perr := restc.PatchFirewallPolicy(ctx, siteID, v.ID.Value, v.Fields)
		if perr != nil {
			return nil, perr
		}
		e := convert.FirewallPolicy(updated, time.Now())
		c.store.FirewallPolicies.Upsert(e.ID.Value, e)
		return e, nil
	case DeleteFirewallPolicy:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteFirewallPolicy, c.store.FirewallPolicies.Remove)
	case ReorderFirewallPolicies:
		if restc == nil || siteID == "" {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "the integration API"}
		}
		return nil, restc.SetFirewallPolicyOrdering(ctx, siteID, v.IDs)

	case CreateFirewallZone:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateFirewallZone, convert.FirewallZone, c.store.FirewallZones.Upsert)
	case UpdateFirewallZone:
		return restUpdate(ctx, c, restc, siteID, v.ID, v.Fields, restc.GetFirewallZone, restc.UpdateFirewallZone, convert.FirewallZone, c.store.FirewallZones.Upsert)
	case DeleteFirewallZone:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteFirewallZone, c.store.FirewallZones.Remove)

	case CreateAclRule:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateAclRule, convert.AclRule, c.store.AclRules.Upsert)
	case UpdateAclRule:
		return restUpdate(ctx, c, restc, siteID, v.ID, v.Fields, restc.GetAclRule, restc.UpdateAclRule, convert.AclRule, c.store.AclRules.Upsert)
	case DeleteAclRule:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteAclRule, c.store.AclRules.Remove)
	case ReorderAclRules:
		if restc == nil || siteID == "" {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "the integration API"}
		}
		return nil, restc.SetAclRuleOrdering(ctx, siteID, v.IDs)

	case CreateDnsPolicy:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateDnsPolicy, convert.DnsPolicy, c.store.DnsPolicies.Upsert)
	case UpdateDnsPolicy:
		return restUpdate(ctx, c, restc, siteID, v.ID, v.Fields, restc.GetDnsPolicy, restc.UpdateDnsPolicy, convert.DnsPolicy, c.store.DnsPolicies.Upsert)
	case DeleteDnsPolicy:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteDnsPolicy, c.store.DnsPolicies.Remove)

	case CreateTrafficMatchingList:
		return restCreate(ctx, c, restc, siteID, v.Fields, restc.CreateTrafficMatchingList, convert.TrafficMatchingList, c.store.TrafficLists.Upsert)
	case UpdateTrafficMatchingList:
		return restUpdate(ctx, c, restc, siteID, v.ID, v.Fields, restc.GetTrafficMatchingList, restc.UpdateTrafficMatchingList, convert.TrafficMatchingList, c.store.TrafficLists.Upsert)
	case DeleteTrafficMatchingList:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteTrafficMatchingList, c.store.TrafficLists.Remove)

	case CreateVouchers:
		if restc == nil || siteID == "" {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "the integration API"}
		}
		wire, verr := restc.CreateVouchers(ctx, siteID, v.Fields)
		if verr != nil {
			return nil, verr
		}
		now := time.Now()
		created := make([]domain.Voucher, 0, len(wire))
		for _, w := range wire {
			e := convert.Voucher(w, now)
			c.store.Vouchers.Upsert(e.ID.Value, e)
			created = append(created, e)
		}
		return created, nil
	case DeleteVoucher:
		return restDelete(ctx, c, restc, siteID, v.ID, restc.DeleteVoucher, c.store.Vouchers.Remove)

	case Speedtest:
		surface = "legacy"
		return nil, c.devMgr(ctx, legacyc, map[string]any{"cmd": "speedtest"})
	case CreateBackup:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.CreateBackup(ctx, v.Days)
	case DeleteBackup:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.DeleteBackup(ctx, v.Filename)
	case InviteAdmin:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.SiteMgr(ctx, map[string]any{
			"cmd":   "invite-admin",
			"name":  v.Name,
			"email": v.Email,
			"role":  "admin",
		})
	case RebootController:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.SystemCmd(ctx, "reboot")
	case PowerOffController:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.SystemCmd(ctx, "poweroff")
	case AddSite:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.AddSite(ctx, v.Description)
	case DeleteSite:
		surface = "legacy"
		if legacyc == nil {
			return nil, &unifi.UnsupportedError{Op: commandName(cmd), Required: "a session"}
		}
		return nil, legacyc.DeleteSite(ctx, v.SiteID)

	default:
		return nil, &unifi.ValidationError{Message: fmt.Sprintf("unknown command %T", cmd)}
	}
}

// deviceTarget resolves the two identifier namespaces of a device against
// the store, so every surface gets the form it needs.
type deviceTarget struct {
	uuid string
	mac  domain.MacAddress
}

func (c *Controller) deviceTarget(id domain.EntityID, mac domain.MacAddress) (deviceTarget, error) {
	var t deviceTarget
	if mac != "" {
		t.mac = mac
		if d, ok := c.store.Devices.Get(mac); ok && d.ID.Kind == domain.IDKindUUID {
			t.uuid = d.ID.Value
		}
		return t, nil
	}
	if id.IsZero() {
		return t, &unifi.ValidationError{Message: "device command needs an id or a mac"}
	}
	d, ok := c.store.DeviceByID(id.Value)
	if !ok {
		if id.Kind == domain.IDKindUUID {
			// Act on the UUID even when the mirror has not seen the device.
			t.uuid = id.Value
			return t, nil
		}
		return t, &unifi.DeviceNotFoundError{ID: id.Value}
	}
	t.mac = d.Mac
	if d.ID.Kind == domain.IDKindUUID {
		t.uuid = d.ID.Value
	}
	return t, nil
}

func (c *Controller) clientTarget(id domain.EntityID, mac domain.MacAddress) (uuid string, out domain.MacAddress, err error) {
	if mac != "" {
		if cl, ok := c.store.Clients.Get(mac); ok && cl.ID.Kind == domain.IDKindUUID {
			return cl.ID.Value, mac, nil
		}
		return "", mac, nil
	}
	if id.IsZero() {
		return "", "", &unifi.ValidationError{Message: "client command needs an id or a mac"}
	}
	cl, ok := c.store.ClientByID(id.Value)
	if !ok {
		if id.Kind == domain.IDKindUUID {
			return id.Value, "", nil
		}
		return "", "", &unifi.ClientNotFoundError{ID: id.Value}
	}
	if cl.ID.Kind == domain.IDKindUUID {
		return cl.ID.Value, cl.Mac, nil
	}
	return "", cl.Mac, nil
}

func (c *Controller) clientAction(ctx context.Context, restc *rest.Client, legacyc *legacy.Client, siteID string, surface *string, id domain.EntityID, mac domain.MacAddress, action rest.ClientAction, legacyCmd string) (any, error) {
	uuid, targetMac, err := c.clientTarget(id, mac)
	if err != nil {
		return nil, err
	}
	if restc != nil && siteID != "" && uuid != "" {
		return nil, restc.ClientActionRequest(ctx, siteID, uuid, action)
	}
	*surface = "legacy"
	if targetMac == "" {
		return nil, &unifi.ClientNotFoundError{ID: id.Value}
	}
	return nil, c.staMgr(ctx, legacyc, map[string]any{"cmd": legacyCmd, "mac": string(targetMac)})
}

func (c *Controller) devMgr(ctx context.Context, legacyc *legacy.Client, payload map[string]any) error {
	if legacyc == nil {
		return &unifi.UnsupportedError{Op: fmt.Sprintf("%v", payload["cmd"]), Required: "a session"}
	}
	return legacyc.DevMgr(ctx, payload)
}

func (c *Controller) staMgr(ctx context.Context, legacyc *legacy.Client, payload map[string]any) error {
	if legacyc == nil {
		return &unifi.UnsupportedError{Op: fmt.Sprintf("%v", payload["cmd"]), Required: "a session"}
	}
	return legacyc.StaMgr(ctx, payload)
}

// restCreate is the shared create path: call the endpoint, mirror the result.
func restCreate[W any, E interface{ Key() string }](ctx context.Context, c *Controller, restc *rest.Client, siteID string, fields map[string]any, create func(context.Context, string, map[string]any) (W, error), conv func(W, time.Time) E, upsert func(string, E)) (any, error) {
	if restc == nil || siteID == "" {
		return nil, &unifi.UnsupportedError{Op: "create", Required: "the integration API"}
	}
	wire, err := create(ctx, siteID, fields)
	if err != nil {
		return nil, err
	}
	e := conv(wire, time.Now())
	upsert(e.Key(), e)
	return e, nil
}

// restUpdate reads the current wire representation, overlays the caller's
// fields and writes the merged object back. Fields absent from the update
// keep their current values.
func restUpdate[W any, E interface{ Key() string }](ctx context.Context, c *Controller, restc *rest.Client, siteID string, id domain.EntityID, fields map[string]any, get func(context.Context, string, string) (W, error), update func(context.Context, string, string, map[string]any) (W, error), conv func(W, time.Time) E, upsert func(string, E)) (any, error) {
	if restc == nil || siteID == "" {
		return nil, &unifi.UnsupportedError{Op: "update", Required: "the integration API"}
	}
	if id.Value == "" {
		return nil, &unifi.ValidationError{Message: "update needs an id"}
	}
	current, err := get(ctx, siteID, id.Value)
	if err != nil {
		return nil, err
	}
	body, err := overlayFields(current, fields)
	if err != nil {
		return nil, err
	}
	wire, err := update(ctx, siteID, id.Value, body)
	if err != nil {
		return nil, err
	}
	e := conv(wire, time.Now())
	upsert(e.Key(), e)
	return e, nil
}

func restDelete(ctx context.Context, c *Controller, restc *rest.Client, siteID string, id domain.EntityID, del func(context.Context, string, string) error, remove func(string) bool) (any, error) {
	if restc == nil || siteID == "" {
		return nil, &unifi.UnsupportedError{Op: "delete", Required: "the integration API"}
	}
	if id.Value == "" {
		return nil, &unifi.ValidationError{Message: "delete needs an id"}
	}
	if err := del(ctx, siteID, id.Value); err != nil {
		return nil, err
	}
	remove(id.Value)
	return nil, nil
}

// overlayFields flattens the current wire record to its JSON object form and
// lays the update fields over it.
func overlayFields(current any, fields map[string]any) (map[string]any, error) {
	base := map[string]any{}
	if attrs := attributesOf(current); len(attrs) > 0 {
		for k, v := range attrs {
			base[k] = v
		}
	} else {
		raw, err := json.Marshal(current)
		if err != nil {
			return nil, &unifi.ValidationError{Message: fmt.Sprintf("encode current state: %v", err)}
		}
		if err := json.Unmarshal(raw, &base); err != nil {
			return nil, &unifi.ValidationError{Message: fmt.Sprintf("decode current state: %v", err)}
		}
	}
	for k, v := range fields {
		base[k] = v
	}
	return base, nil
}

// attributesOf pulls the preserved raw object off wire types that keep one.
func attributesOf(current any) map[string]any {
	switch w := current.(type) {
	case rest.Network:
		return w.Attributes
	case rest.Device:
		return w.Attributes
	default:
		return nil
	}
}

// commandName is the metrics and log label for a command value.
func commandName(cmd Command) string {
	name := fmt.Sprintf("%T", cmd)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
