// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package rest

import (
	"context"
	"net/url"
	"strconv"
)

// AppInfo is the application info record from v1/info.
type AppInfo struct {
	ApplicationVersion string `json:"applicationVersion"`
}

// Site is the wire form of a controller site.
type Site struct {
	ID                string `json:"id"`
	InternalReference string `json:"internalReference"`
	Name              string `json:"name"`
}

// Country is reference data from v1/countries.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Info fetches the application info.
func (c *Client) Info(ctx context.Context) (AppInfo, error) {
	return get[AppInfo](ctx, c, "v1/info", nil)
}

// ListSites returns one page of sites.
func (c *Client) ListSites(ctx context.Context, offset int64, limit int32) (Page[Site], error) {
	return get[Page[Site]](ctx, c, "v1/sites", pageQuery(offset, limit))
}

// ListCountries returns the country reference list.
func (c *Client) ListCountries(ctx context.Context) ([]Country, error) {
	page, err := get[Page[Country]](ctx, c, "v1/countries", nil)
	return page.Data, err
}

// WanInterface is one WAN uplink of a site.
type WanInterface struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Up   *bool  `json:"up"`
}

// ListWans returns the site's WAN interfaces.
func (c *Client) ListWans(ctx context.Context, siteID string) ([]WanInterface, error) {
	page, err := get[Page[WanInterface]](ctx, c, sitePath(siteID, "wans"), nil)
	return page.Data, err
}

// DpiApplication is one entry of the DPI application catalog.
type DpiApplication struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
}

// ListDpiApplications returns the DPI application catalog.
func (c *Client) ListDpiApplications(ctx context.Context, siteID string) ([]DpiApplication, error) {
	page, err := get[Page[DpiApplication]](ctx, c, sitePath(siteID, "dpi/applications"), nil)
	return page.Data, err
}

// RadiusProfile is one RADIUS profile of a site.
type RadiusProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListRadiusProfiles returns the site's RADIUS profiles.
func (c *Client) ListRadiusProfiles(ctx context.Context, siteID string) ([]RadiusProfile, error) {
	page, err := get[Page[RadiusProfile]](ctx, c, sitePath(siteID, "radius/profiles"), nil)
	return page.Data, err
}

func pageQuery(offset int64, limit int32) url.Values {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("limit", strconv.FormatInt(int64(limit), 10))
	return q
}

func sitePath(siteID, rest string) string {
	return "v1/sites/" + url.PathEscape(siteID) + "/" + rest
}
