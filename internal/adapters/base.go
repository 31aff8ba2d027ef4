package adapters

import (
	"fmt"

	"deepcut/internal/playlist"
)

// BaseAdapter holds the connection state shared by platform adapters:
// whether a client is attached and which account it belongs to.
type BaseAdapter struct {
	authenticated bool
	platformName  string
	user          playlist.User
}

// NewBaseAdapter creates a new BaseAdapter
func NewBaseAdapter(platformName string) BaseAdapter {
	return BaseAdapter{platformName: platformName}
}

// SetAuthenticated updates the authentication status. Dropping it forgets the account.
func (b *BaseAdapter) SetAuthenticated(status bool) {
	b.authenticated = status
	if !status {
		b.user = playlist.User{}
	}
}

// IsAuthenticated checks if the adapter is authenticated
func (b *BaseAdapter) IsAuthenticated() bool {
	return b.authenticated
}

// CheckAuth ensures the adapter is authenticated before making API calls
func (b *BaseAdapter) CheckAuth() error {
	if !b.IsAuthenticated() {
		return fmt.Errorf("not connected to %s, run 'deepcut login' first", b.platformName)
	}
	return nil
}

// rememberUser caches the account of the attached client.
func (b *BaseAdapter) rememberUser(u playlist.User) {
	b.user = u
}

// cachedUser returns the remembered account, if any.
func (b *BaseAdapter) cachedUser() (playlist.User, bool) {
	return b.user, b.user.ID != ""
}

// PlatformName returns the name of the platform
func (b *BaseAdapter) PlatformName() string {
	return b.platformName
}
