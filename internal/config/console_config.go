package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyListenAddr  = "console.listen_addr"
	keyDemoBackend = "console.demo"
)

type ConsoleConfig interface {
	GetListenAddr() string
	GetDemoBackend() bool
}

type Console struct {
	v *viper.Viper
}

var _ ConsoleConfig = Console{}

// GetListenAddr returns the console listen address; a bare port gets a leading colon
func (c Console) GetListenAddr() string {
	addr := c.v.GetString(keyListenAddr)
	if addr != "" && !strings.Contains(addr, ":") {
		addr = fmt.Sprintf(":%s", addr)
	}
	return addr
}

// GetDemoBackend reports whether serve should start the in-process fake backend
func (c Console) GetDemoBackend() bool {
	return c.v.GetBool(keyDemoBackend)
}
